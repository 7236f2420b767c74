package vdom

import "strings"

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Global attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data sets a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaCurrent sets aria-current, used on the link of the active page.
func AriaCurrent(value string) Attr { return attr("aria-current", value) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Links

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Download sets the download attribute.
func Download(filename ...string) Attr {
	if len(filename) > 0 {
		return attr("download", filename[0])
	}
	return attr("download", true)
}

// Forms

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// Media

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{}
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Classes merges class values. Accepts string, []string and
// map[string]bool; map entries are not ordered.
func Classes(classes ...any) Attr {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					result = append(result, s)
				}
			}
		case map[string]bool:
			for class, include := range v {
				if include && class != "" {
					result = append(result, class)
				}
			}
		}
	}
	return attr("class", strings.Join(result, " "))
}
