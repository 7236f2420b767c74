// Package router compiles a declarative route tree and matches pathnames
// against it.
//
// A route tree is a slice of *Route values. Each route has a path template
// relative to its parent, or is an index route that inherits the parent's
// path unchanged:
//
//	routes := []*router.Route{
//	    {Path: "/", Content: home},
//	    {Path: "/admin", Content: adminLayout, Children: []*router.Route{
//	        {Index: true, Content: dashboard},
//	        {Path: "settings", Content: settings},
//	    }},
//	    {Path: "/users/:id", Content: user},
//	}
//
//	tree, err := router.Compile(routes, "/")
//	chain := tree.Match("/admin/settings") // [admin, settings]
//
// # Path Templates
//
// Templates use the syntax of package routepath:
//
//	/users/:id          named segment
//	/users/:id?         optional segment
//	/files/:path*       zero or more segments
//	/files/:path+       one or more segments
//	/items/:id(\d+)     custom expression
//	/static/*           anonymous wildcard ("0")
//
// Every compiled pattern accepts an optional trailing slash.
//
// # Matching
//
// Match walks the tree depth-first in declaration order. A route with
// children first tries its children; when a descendant matches, the route
// is prepended to the chain. Otherwise its own pattern is tested. The first
// match wins, so when two siblings overlap the earlier one is chosen.
//
// Params are extracted once, from the deepest route of the chain.
package router
