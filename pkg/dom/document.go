package dom

import "sync"

// Document is the root of a tree with a title and a body.
type Document struct {
	*Node

	mu    sync.RWMutex
	title string
	head  *Node
	body  *Node
}

// NewDocument returns a document with <html>, <head> and <body>.
func NewDocument(title string) *Document {
	d := &Document{Node: &Node{Type: DocumentNode}, title: title}
	html := NewElement("html")
	d.head = NewElement("head")
	d.body = NewElement("body")
	_ = html.AppendChild(d.head)
	_ = html.AppendChild(d.body)
	_ = d.Node.AppendChild(html)
	return d
}

// Title returns the document title.
func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// SetTitle sets the document title.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// Head returns the <head> element.
func (d *Document) Head() *Node {
	return d.head
}

// Body returns the <body> element.
func (d *Document) Body() *Node {
	return d.body
}
