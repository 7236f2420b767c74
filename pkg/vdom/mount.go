package vdom

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/vango-dev/wayfinder/pkg/dom"
)

// Mount errors.
var (
	ErrNilParent      = errors.New("vdom: nil mount parent")
	ErrInvalidHandler = errors.New("vdom: event handler must be func(*dom.Event) or func()")
)

// Root is a virtual tree mounted into a dom parent.
type Root struct {
	parent   *dom.Node
	nodes    []*dom.Node
	cleanups []func()
	mounted  bool
}

// Mount builds the dom nodes for v and appends them to parent. On error
// nothing stays attached.
func Mount(parent *dom.Node, v *VNode) (*Root, error) {
	if parent == nil {
		return nil, ErrNilParent
	}

	r := &Root{parent: parent}
	nodes, err := r.build(v)
	if err != nil {
		r.runCleanups()
		return nil, err
	}
	for _, n := range nodes {
		if err := parent.AppendChild(n); err != nil {
			r.nodes = nodes
			r.Unmount()
			return nil, err
		}
	}
	r.nodes = nodes
	r.mounted = true
	return r, nil
}

// Parent returns the node the tree was mounted into.
func (r *Root) Parent() *dom.Node {
	return r.parent
}

// Nodes returns the top-level dom nodes of the mount.
func (r *Root) Nodes() []*dom.Node {
	out := make([]*dom.Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// First returns the first top-level element, or the first node when the
// tree has no elements.
func (r *Root) First() *dom.Node {
	for _, n := range r.nodes {
		if n.Type == dom.ElementNode {
			return n
		}
	}
	if len(r.nodes) > 0 {
		return r.nodes[0]
	}
	return nil
}

// Mounted reports whether the tree is still mounted.
func (r *Root) Mounted() bool {
	return r.mounted
}

// Unmount removes the tree's nodes, detaches its listeners and calls
// Unmount on its components. Calling Unmount again does nothing.
func (r *Root) Unmount() {
	r.runCleanups()
	for _, n := range r.nodes {
		n.Remove()
	}
	r.nodes = nil
	r.mounted = false
}

func (r *Root) runCleanups() {
	cleanups := r.cleanups
	r.cleanups = nil
	// Innermost first, like a browser disconnecting a subtree.
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (r *Root) build(v *VNode) ([]*dom.Node, error) {
	if v == nil {
		return nil, nil
	}

	switch v.Kind {
	case KindText:
		return []*dom.Node{dom.NewText(v.Text)}, nil

	case KindRaw:
		nodes, err := dom.ParseFragmentString(v.Text)
		if err != nil {
			return nil, fmt.Errorf("vdom: raw html: %w", err)
		}
		return nodes, nil

	case KindFragment:
		return r.buildChildren(v.Children)

	case KindComponent:
		if v.Comp == nil {
			return nil, nil
		}
		if u, ok := v.Comp.(Unmounter); ok {
			r.cleanups = append(r.cleanups, u.Unmount)
		}
		return r.build(v.Comp.Render())

	case KindElement:
		el, err := r.buildElement(v)
		if err != nil {
			return nil, err
		}
		return []*dom.Node{el}, nil

	default:
		return nil, fmt.Errorf("vdom: unknown node kind %s", v.Kind)
	}
}

func (r *Root) buildChildren(children []*VNode) ([]*dom.Node, error) {
	var out []*dom.Node
	for _, c := range children {
		nodes, err := r.build(c)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (r *Root) buildElement(v *VNode) (*dom.Node, error) {
	el := dom.NewElement(v.Tag)

	for _, key := range slices.Sorted(maps.Keys(v.Props)) {
		if isHandlerKey(key) {
			continue
		}
		if s, ok := attrString(v.Props[key]); ok {
			el.SetAttr(key, s)
		}
	}
	for _, name := range v.Listeners() {
		fn, err := listenerFor(v.Props["on"+name])
		if err != nil {
			return nil, fmt.Errorf("%w: on%s on <%s>", err, name, v.Tag)
		}
		r.cleanups = append(r.cleanups, el.AddEventListener(name, fn))
	}

	// Outlets start empty: the child route dispatches into them.
	if IsVoidElement(v.Tag) || v.IsOutlet() {
		return el, nil
	}
	children, err := r.buildChildren(v.Children)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if err := el.AppendChild(c); err != nil {
			return nil, err
		}
	}
	return el, nil
}

func listenerFor(h any) (dom.Listener, error) {
	switch fn := h.(type) {
	case func(*dom.Event):
		return fn, nil
	case dom.Listener:
		return fn, nil
	case func():
		return func(*dom.Event) { fn() }, nil
	default:
		return nil, ErrInvalidHandler
	}
}

// attrString converts a prop value to its attribute form. False booleans
// and nil remove the attribute.
func attrString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return "", x
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
