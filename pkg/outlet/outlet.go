// Package outlet implements render targets: the <u-outlet> elements routes
// render into.
//
// Each matched route renders into an outlet. The next route of the chain
// renders into the first outlet found inside that content, so nested
// layouts form a chain of outlets from the root element down.
package outlet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// TagName is the element name of outlets.
const TagName = "u-outlet"

// Dispatch errors.
var (
	ErrUnknownContent = errors.New("outlet: unknown content kind")
	ErrRenderPanic    = errors.New("outlet: panic while rendering content")
)

func init() {
	if err := dom.Define(TagName, func(el *dom.Node) any { return &Outlet{el: el} }); err != nil {
		panic(err)
	}
}

// Outlet is a mount point for route content.
type Outlet struct {
	el *dom.Node

	mu       sync.Mutex
	lastID   string
	mounted  *dom.Node
	teardown func()
}

// New creates a detached outlet element.
func New() *Outlet {
	o, _ := From(dom.NewElement(TagName))
	return o
}

// From returns the outlet behind an element.
func From(n *dom.Node) (*Outlet, bool) {
	if n == nil {
		return nil, false
	}
	o, ok := n.Upgraded().(*Outlet)
	return o, ok
}

// Find returns the first outlet below root, searching depth-first in
// document order and entering shadow trees. root itself is not
// considered. The error is a render-target-missing RouteError.
func Find(root *dom.Node) (*Outlet, error) {
	if root != nil {
		found := root.Find(func(n *dom.Node) bool {
			_, ok := From(n)
			return ok
		})
		if o, ok := From(found); ok {
			return o, nil
		}
	}
	return nil, routeerr.RenderTargetMissing()
}

// Element returns the outlet's element.
func (o *Outlet) Element() *dom.Node {
	return o.el
}

// LastID returns the identity of the mounted content, or "".
func (o *Outlet) LastID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastID
}

// Mounted returns the first mounted node, or nil.
func (o *Outlet) Mounted() *dom.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mounted
}

// Shows reports whether the outlet currently shows content with this id.
func (o *Outlet) Shows(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mounted != nil && o.lastID == id
}

// Next returns the first outlet nested inside the mounted content.
func (o *Outlet) Next() (*Outlet, bool) {
	next, err := Find(o.el)
	return next, err == nil
}

// Dispatch renders content under identity id. When the outlet already
// shows id and force is false, the mounted node is returned unchanged.
// Otherwise the new content is built, the previous content is torn down
// and the new content is attached.
func (o *Outlet) Dispatch(ctx context.Context, id string, c Content, force bool) (mounted *dom.Node, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !force && o.mounted != nil && o.lastID == id {
		return o.mounted, nil
	}
	if c.Kind() == KindNode && c.Node() == o.mounted && c.Node().Parent() == o.el {
		// The same node again: nothing to remount.
		o.lastID = id
		return o.mounted, nil
	}

	defer func() {
		if r := recover(); r != nil {
			mounted, err = nil, fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()

	staged := dom.NewFragment()
	teardown, err := build(ctx, staged, c)
	if err != nil {
		return nil, err
	}
	first := staged.FirstChild()

	o.clearLocked()
	if err := o.el.AppendChild(staged); err != nil {
		teardown()
		return nil, err
	}

	if first == nil {
		// Empty content still replaces what was shown.
		first = o.el
	}
	o.lastID = id
	o.mounted = first
	o.teardown = teardown
	return first, nil
}

// Clear tears down the mounted content.
func (o *Outlet) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearLocked()
}

func (o *Outlet) clearLocked() {
	if o.teardown != nil {
		o.teardown()
	}
	// Anything left behind, e.g. nodes added by content itself.
	for _, c := range o.el.Children() {
		c.Remove()
	}
	o.teardown = nil
	o.mounted = nil
	o.lastID = ""
}

// build renders c into staged and returns the teardown for what it
// mounted.
func build(ctx context.Context, staged *dom.Node, c Content) (func(), error) {
	switch c.Kind() {
	case KindNode:
		n := c.Node()
		if err := staged.AppendChild(n); err != nil {
			return nil, err
		}
		return n.Remove, nil

	case KindVNode:
		root, err := vdom.Mount(staged, c.VNode())
		if err != nil {
			return nil, err
		}
		return root.Unmount, nil

	case KindTemplate:
		var buf bytes.Buffer
		if err := c.Template().Render(ctx, &buf); err != nil {
			return nil, fmt.Errorf("outlet: render template: %w", err)
		}
		nodes, err := dom.ParseFragment(&buf)
		if err != nil {
			return nil, fmt.Errorf("outlet: parse template output: %w", err)
		}
		for _, n := range nodes {
			if err := staged.AppendChild(n); err != nil {
				return nil, err
			}
		}
		return func() {
			for _, n := range nodes {
				n.Remove()
			}
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContent, c.Kind())
	}
}
