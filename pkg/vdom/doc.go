// Package vdom provides virtual element trees that mount onto package dom.
//
// A VNode is an element, text, fragment, component or raw HTML node.
// Elements are created with variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    A(Href("/users/1"), Text("Ann")),
//	    OnClick(handler),
//	)
//
// # Mounting
//
// Mount builds the dom nodes for a tree, appends them to a parent and
// returns a Root. Root.Unmount removes the nodes, detaches every event
// listener the tree registered and calls Unmount on components that
// implement Unmounter, so nothing outlives the mount.
//
// Outlet elements are mounted empty. The child route's content is
// dispatched into them.
package vdom
