package outlet

import (
	"github.com/a-h/templ"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// Kind discriminates the variants of Content.
type Kind uint8

const (
	KindInvalid  Kind = iota // zero Content
	KindNode                 // a concrete dom node
	KindVNode                // a virtual element tree
	KindTemplate             // a templ component rendered to HTML
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindVNode:
		return "vnode"
	case KindTemplate:
		return "template"
	default:
		return "invalid"
	}
}

// Content is what a route renders into an outlet. Exactly one variant is
// set; the zero value is invalid.
type Content struct {
	kind     Kind
	node     *dom.Node
	vnode    *vdom.VNode
	template templ.Component
}

// FromNode wraps a dom node. A nil node gives the zero Content.
func FromNode(n *dom.Node) Content {
	if n == nil {
		return Content{}
	}
	return Content{kind: KindNode, node: n}
}

// FromVNode wraps a virtual tree. A nil tree gives the zero Content.
func FromVNode(v *vdom.VNode) Content {
	if v == nil {
		return Content{}
	}
	return Content{kind: KindVNode, vnode: v}
}

// FromTemplate wraps a templ component. A nil component gives the zero
// Content.
func FromTemplate(c templ.Component) Content {
	if c == nil {
		return Content{}
	}
	return Content{kind: KindTemplate, template: c}
}

// Kind returns the variant.
func (c Content) Kind() Kind {
	return c.kind
}

// IsZero reports whether c holds no content.
func (c Content) IsZero() bool {
	return c.kind == KindInvalid
}

// Node returns the dom node of a KindNode content.
func (c Content) Node() *dom.Node {
	return c.node
}

// VNode returns the tree of a KindVNode content.
func (c Content) VNode() *vdom.VNode {
	return c.vnode
}

// Template returns the component of a KindTemplate content.
func (c Content) Template() templ.Component {
	return c.template
}
