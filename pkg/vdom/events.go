package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// On handles events of any type.
func On(name string, handler any) EventHandler { return event(name, handler) }

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnInput handles input events.
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events.
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }
