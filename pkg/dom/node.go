// Package dom is a small headless document model.
//
// It provides the parts of the browser DOM a navigation engine depends on:
// element trees with parent links, shadow roots, bubbling events with
// listeners that can be removed, disconnection hooks for teardown, a
// custom-element registry and HTML parsing and rendering.
//
// A tree is not safe for concurrent mutation. Callers serialize access the
// way a browser's event loop would.
package dom

import (
	"errors"
	"strings"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	FragmentNode
	ShadowRootNode
)

// String returns the name of the node type.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case FragmentNode:
		return "fragment"
	case ShadowRootNode:
		return "shadow-root"
	default:
		return "unknown"
	}
}

// Tree errors.
var (
	ErrHierarchy      = errors.New("dom: invalid hierarchy")
	ErrNotChild       = errors.New("dom: node is not a child")
	ErrShadowAttached = errors.New("dom: shadow root already attached")
	ErrNoShadow       = errors.New("dom: element cannot host a shadow root")
)

// Attribute is a name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

// Node is a node in a document tree.
type Node struct {
	Type NodeType

	// Tag is the lower-case element name for element nodes.
	Tag string

	// Data is the content of text and comment nodes.
	Data string

	attrs    []Attribute
	parent   *Node
	children []*Node

	shadow *Node // attached shadow root, for elements
	host   *Node // host element, for shadow roots

	listeners    map[string][]*listener
	disconnected []func()
	upgraded     any
}

// NewElement creates an element. When tag is registered with Define the
// element is upgraded immediately; see Upgraded.
func NewElement(tag string, attrs ...Attribute) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	for _, a := range attrs {
		n.SetAttr(a.Name, a.Value)
	}
	upgrade(n)
	return n
}

// NewText creates a text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewComment creates a comment node.
func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

// NewFragment creates a document fragment. Appending a fragment moves its
// children instead of the fragment itself.
func NewFragment(children ...*Node) *Node {
	f := &Node{Type: FragmentNode}
	for _, c := range children {
		_ = f.AppendChild(c)
	}
	return f
}

// Parent returns the parent node, or nil. The parent of a shadow root is
// nil; use Host.
func (n *Node) Parent() *Node {
	return n.parent
}

// Host returns the element a shadow root is attached to.
func (n *Node) Host() *Node {
	return n.host
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Upgraded returns the value the element's registered constructor
// returned, or nil.
func (n *Node) Upgraded() any {
	return n.upgraded
}

// Attr returns the value of an attribute.
func (n *Node) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttr returns the value of an attribute, or "".
func (n *Node) GetAttr(name string) string {
	v, _ := n.Attr(name)
	return v
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets an attribute, keeping the original position when it exists.
func (n *Node) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

// RemoveAttr removes an attribute.
func (n *Node) RemoveAttr(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the attribute list in source order.
func (n *Node) Attrs() []Attribute {
	out := make([]Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// AppendChild appends child, detaching it from its current parent first.
// A fragment's children are moved instead.
func (n *Node) AppendChild(child *Node) error {
	if child == nil {
		return nil
	}
	if err := n.checkInsert(child); err != nil {
		return err
	}

	if child.Type == FragmentNode {
		moved := child.children
		child.children = nil
		for _, c := range moved {
			c.parent = n
		}
		n.children = append(n.children, moved...)
		return nil
	}

	if child.parent != nil {
		_ = child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child and runs the disconnection hooks of its
// subtree.
func (n *Node) RemoveChild(child *Node) error {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			child.disconnect()
			return nil
		}
	}
	return ErrNotChild
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// ReplaceChildren removes every child and appends nodes.
func (n *Node) ReplaceChildren(nodes ...*Node) error {
	for _, c := range n.Children() {
		_ = n.RemoveChild(c)
	}
	for _, c := range nodes {
		if err := n.AppendChild(c); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) checkInsert(child *Node) error {
	switch n.Type {
	case TextNode, CommentNode:
		return ErrHierarchy
	}
	switch child.Type {
	case DocumentNode, ShadowRootNode:
		return ErrHierarchy
	}
	for p := n; p != nil; p = p.parentOrHost() {
		if p == child {
			return ErrHierarchy
		}
	}
	return nil
}

func (n *Node) parentOrHost() *Node {
	if n.parent != nil {
		return n.parent
	}
	return n.host
}

// AttachShadow attaches an empty shadow root to an element.
func (n *Node) AttachShadow() (*Node, error) {
	if n.Type != ElementNode {
		return nil, ErrNoShadow
	}
	if n.shadow != nil {
		return nil, ErrShadowAttached
	}
	n.shadow = &Node{Type: ShadowRootNode, host: n}
	return n.shadow, nil
}

// ShadowRoot returns the attached shadow root, or nil.
func (n *Node) ShadowRoot() *Node {
	return n.shadow
}

// OnDisconnect registers fn to run when n, or one of its ancestors, is
// removed from its parent. Hooks run once and are then dropped.
func (n *Node) OnDisconnect(fn func()) {
	n.disconnected = append(n.disconnected, fn)
}

func (n *Node) disconnect() {
	hooks := n.disconnected
	n.disconnected = nil
	for _, fn := range hooks {
		fn()
	}
	if n.shadow != nil {
		n.shadow.disconnect()
	}
	for _, c := range n.children {
		c.disconnect()
	}
}

// Root returns the topmost node reachable through parents and shadow hosts.
func (n *Node) Root() *Node {
	p := n
	for next := p.parentOrHost(); next != nil; next = p.parentOrHost() {
		p = next
	}
	return p
}

// IsConnected reports whether n belongs to a document.
func (n *Node) IsConnected() bool {
	return n.Root().Type == DocumentNode
}

// Walk visits n and its light-tree descendants depth-first in document
// order. Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// TextContent concatenates the text of all descendant text nodes,
// including those in shadow trees.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	if n.Type == TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.shadow != nil {
		n.shadow.collectText(b)
	}
	for _, c := range n.children {
		c.collectText(b)
	}
}

// FindByTag returns the first descendant element with the given tag,
// searching shadow trees before light children. n itself is not tested.
func (n *Node) FindByTag(tag string) *Node {
	tag = strings.ToLower(tag)
	return n.Find(func(c *Node) bool {
		return c.Type == ElementNode && c.Tag == tag
	})
}

// Find returns the first descendant for which match returns true. At every
// element the attached shadow tree is searched before the light children,
// since the shadow tree is what the element renders. n itself is not
// tested.
func (n *Node) Find(match func(*Node) bool) *Node {
	if n.shadow != nil {
		if found := n.shadow.findIn(match); found != nil {
			return found
		}
	}
	for _, c := range n.children {
		if found := c.findIn(match); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) findIn(match func(*Node) bool) *Node {
	if n.Type != ShadowRootNode && match(n) {
		return n
	}
	return n.Find(match)
}
