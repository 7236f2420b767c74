package dom

// Event is dispatched through a tree with Dispatch.
type Event struct {
	Type string

	// Bubbles makes the event propagate to ancestors.
	Bubbles bool

	// Composed lets a bubbling event leave a shadow tree for its host.
	Composed bool

	// Detail carries event-specific data.
	Detail any

	// Pointer state for click events.
	Button   int
	CtrlKey  bool
	MetaKey  bool
	ShiftKey bool
	AltKey   bool

	target           *Node
	currentTarget    *Node
	path             []*Node
	defaultPrevented bool
	stopped          bool
}

// NewClick returns a bubbling, composed primary-button click.
func NewClick() *Event {
	return &Event{Type: "click", Bubbles: true, Composed: true}
}

// Target returns the node the event was dispatched on.
func (e *Event) Target() *Node {
	return e.target
}

// CurrentTarget returns the node whose listener is running.
func (e *Event) CurrentTarget() *Node {
	return e.currentTarget
}

// Path returns the propagation path, starting at the target.
func (e *Event) Path() []*Node {
	out := make([]*Node, len(e.path))
	copy(out, e.path)
	return out
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event after the current node's listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// HasModifier reports whether a modifier key was held or a non-primary
// button was used.
func (e *Event) HasModifier() bool {
	return e.Button != 0 || e.CtrlKey || e.MetaKey || e.ShiftKey || e.AltKey
}

// Listener handles an event.
type Listener func(*Event)

type listener struct {
	fn      Listener
	removed bool
}

// AddEventListener registers fn for events of type typ on n. The returned
// function removes the listener.
func (n *Node) AddEventListener(typ string, fn Listener) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := n.listeners[typ]
		for i, x := range list {
			if x == l {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount returns the number of listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch dispatches e with n as target and reports whether the default
// action was not prevented.
func (n *Node) Dispatch(e *Event) bool {
	e.target = n
	e.path = eventPath(n, e)
	e.stopped = false

	for i, node := range e.path {
		if i > 0 && !e.Bubbles {
			break
		}
		e.currentTarget = node
		node.fire(e)
		if e.stopped {
			break
		}
	}
	e.currentTarget = nil
	return !e.defaultPrevented
}

func (n *Node) fire(e *Event) {
	list := n.listeners[e.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		if !l.removed {
			l.fn(e)
		}
	}
}

func eventPath(target *Node, e *Event) []*Node {
	var path []*Node
	for p := target; p != nil; {
		path = append(path, p)
		switch {
		case p.parent != nil:
			p = p.parent
		case p.Type == ShadowRootNode && e.Composed:
			p = p.host
		default:
			p = nil
		}
	}
	return path
}
