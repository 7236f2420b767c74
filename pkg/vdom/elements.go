package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, Component, string,
// EventHandler.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Conditional attributes and children
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case Component:
			node.Children = append(node.Children, &VNode{Kind: KindComponent, Comp: v})

		case string:
			node.Children = append(node.Children, Text(v))

		case EventHandler:
			node.Props[v.Event] = v.Handler

		case []any:
			// Forwarded variadic arguments
			nested := createElement(tag, v)
			for k, p := range nested.Props {
				node.Props[k] = p
			}
			node.Children = append(node.Children, nested.Children...)
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	v.Props[a.Key] = a.Value
}

// Document sections

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func Aside(args ...any) *VNode   { return createElement("aside", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }

// Inline text

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Forms

func Form(args ...any) *VNode   { return createElement("form", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }
func Button(args ...any) *VNode { return createElement("button", args) }
func Label(args ...any) *VNode  { return createElement("label", args) }

// Media

func Img(args ...any) *VNode { return createElement("img", args) }

// Outlet creates the nested render target element for child routes.
func Outlet(args ...any) *VNode { return createElement(OutletTag, args) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return createElement(tag, args)
}
