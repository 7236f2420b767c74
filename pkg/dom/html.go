package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// shadowRootAttr marks a declarative shadow root template.
const shadowRootAttr = "shadowrootmode"

// ParseFragment parses HTML in a <body> context. A
// <template shadowrootmode="open"> child becomes the shadow root of its
// parent element. Registered custom elements are upgraded.
func ParseFragment(r io.Reader) ([]*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, err
	}

	out := make([]*Node, 0, len(parsed))
	for _, hn := range parsed {
		if n := convert(hn, nil); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// ParseFragmentString is ParseFragment on a string.
func ParseFragmentString(s string) ([]*Node, error) {
	return ParseFragment(strings.NewReader(s))
}

func convert(hn *html.Node, parent *Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return NewText(hn.Data)
	case html.CommentNode:
		return NewComment(hn.Data)
	case html.ElementNode:
	default:
		return nil
	}

	if hn.Data == "template" && parent != nil && parent.shadow == nil && hasAttr(hn, shadowRootAttr) {
		root, err := parent.AttachShadow()
		if err == nil {
			appendConverted(root, hn)
			return nil
		}
	}

	attrs := make([]Attribute, 0, len(hn.Attr))
	for _, a := range hn.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		attrs = append(attrs, Attribute{Name: name, Value: a.Val})
	}
	el := NewElement(hn.Data, attrs...)
	appendConverted(el, hn)
	return el
}

func appendConverted(dst *Node, hn *html.Node) {
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(c, dst); n != nil {
			_ = dst.AppendChild(n)
		}
	}
}

func hasAttr(hn *html.Node, key string) bool {
	for _, a := range hn.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Render writes n as HTML. Shadow roots are written as declarative
// <template shadowrootmode="open"> children.
func Render(w io.Writer, n *Node) error {
	if n.Type == FragmentNode || n.Type == ShadowRootNode {
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, toHTML(n))
}

// OuterHTML renders n to a string.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// RenderDocument writes d as an HTML document, including its title.
func RenderDocument(w io.Writer, d *Document) error {
	doc := toHTML(d.Node)
	if head := findHTML(doc, "head"); head != nil {
		title := &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		title.AppendChild(&html.Node{Type: html.TextNode, Data: d.Title()})
		head.AppendChild(title)
	}
	if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
		return err
	}
	return html.Render(w, doc)
}

func toHTML(n *Node) *html.Node {
	var hn *html.Node
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.Data}
	case DocumentNode:
		hn = &html.Node{Type: html.DocumentNode}
	case ElementNode:
		hn = &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
		for _, a := range n.attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
		if n.shadow != nil {
			tmpl := &html.Node{
				Type:     html.ElementNode,
				Data:     "template",
				DataAtom: atom.Template,
				Attr:     []html.Attribute{{Key: shadowRootAttr, Val: "open"}},
			}
			for _, c := range n.shadow.children {
				tmpl.AppendChild(toHTML(c))
			}
			hn.AppendChild(tmpl)
		}
	default:
		hn = &html.Node{Type: html.DocumentNode}
	}
	for _, c := range n.children {
		hn.AppendChild(toHTML(c))
	}
	return hn
}

func findHTML(hn *html.Node, tag string) *html.Node {
	if hn.Type == html.ElementNode && hn.Data == tag {
		return hn
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if found := findHTML(c, tag); found != nil {
			return found
		}
	}
	return nil
}
