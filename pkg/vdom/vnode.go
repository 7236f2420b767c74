package vdom

import (
	"slices"
	"strings"
)

// OutletTag is the element name a layout uses to mark where its child
// route renders.
const OutletTag = "u-outlet"

// VKind says what a VNode mounts as.
type VKind uint8

const (
	KindElement   VKind = iota // one dom element
	KindText                   // one text node
	KindFragment               // its children, unwrapped
	KindComponent              // whatever Comp renders
	KindRaw                    // nodes parsed from Text
)

func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is one node of a renderable tree. Trees are built once per
// produced content and mounted by Mount; they are never diffed.
type VNode struct {
	Kind     VKind
	Tag      string
	Props    Props
	Children []*VNode
	Text     string    // KindText and KindRaw
	Comp     Component // KindComponent
}

// Props maps attribute names to values and "on"+event names to handlers.
type Props map[string]any

// Listeners returns the event names v listens to, sorted.
func (v *VNode) Listeners() []string {
	if v == nil || v.Kind != KindElement {
		return nil
	}
	var events []string
	for key := range v.Props {
		if isHandlerKey(key) {
			events = append(events, key[2:])
		}
	}
	slices.Sort(events)
	return events
}

// IsOutlet reports whether v is an outlet element.
func (v *VNode) IsOutlet() bool {
	return v != nil && v.Kind == KindElement && v.Tag == OutletTag
}

func isHandlerKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// Attr is an attribute argument to an element factory. The zero Attr is
// skipped, which lets AttrIf and ClassIf drop out.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty reports whether a is the zero Attr.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler is an event argument to an element factory. Handler is a
// func(*dom.Event) or a func().
type EventHandler struct {
	Event   string
	Handler any
}

// Component renders a subtree at mount time. Components that also
// implement Unmounter are told when their mount is torn down.
type Component interface {
	Render() *VNode
}

// Unmounter is implemented by components that hold resources released when
// their mount is torn down.
type Unmounter interface {
	Unmount()
}

// ComponentFunc adapts a render function to Component.
type ComponentFunc func() *VNode

// Render implements Component.
func (f ComponentFunc) Render() *VNode {
	return f()
}

// Func returns render as a Component.
func Func(render func() *VNode) Component {
	return ComponentFunc(render)
}
