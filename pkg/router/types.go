package router

import (
	"context"
	"fmt"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/routepath"
)

// ContentFunc produces the content a route renders into its outlet.
// Returning a zero Content without an error is treated as a load failure.
type ContentFunc func(ctx context.Context, nav *location.Context) (outlet.Content, error)

// LoaderFunc loads data for the deepest matched route before any content is
// produced. The result is stored in the navigation context's Data field.
type LoaderFunc func(ctx context.Context, nav *location.Context) (any, error)

// Route is a node in the route tree.
type Route struct {
	// ID identifies the route's rendered content inside an outlet.
	// A random ID is assigned during compilation when empty.
	ID string

	// Path is the template relative to the parent route (e.g. "settings",
	// "/users/:id"). Required unless Index is set.
	Path string

	// Index marks a route that renders at its parent's path.
	// Index routes have no Path and no Children.
	Index bool

	// Children are nested routes, matched before the route itself.
	Children []*Route

	// Content renders the route. Routes without content only contribute
	// their path, and their children render into the same outlet.
	Content ContentFunc

	// Loader runs when the route is the deepest match. Optional.
	Loader LoaderFunc

	// Title replaces the document title when set.
	Title string

	// Force controls whether content is re-rendered when the outlet
	// already shows this route. Nil means true for leaves and index
	// routes, false for routes with children.
	Force *bool

	// IgnoreCase makes the path template case-insensitive.
	IgnoreCase bool

	pattern string
	matcher *routepath.Pattern
	force   bool
}

// Pattern returns the effective path template, including the parent path
// and the optional trailing slash. Empty before compilation.
func (r *Route) Pattern() string {
	return r.pattern
}

// ForceRerender reports the resolved Force setting.
func (r *Route) ForceRerender() bool {
	return r.force
}

// HasChildren reports whether the route has nested routes.
func (r *Route) HasChildren() bool {
	return len(r.Children) > 0
}

// Test reports whether pathname matches the route's own pattern.
func (r *Route) Test(pathname string) bool {
	return r.matcher != nil && r.matcher.Test(pathname)
}

// String describes the route for error messages and logs.
func (r *Route) String() string {
	switch {
	case r.Index:
		return fmt.Sprintf("index route %q", r.ID)
	case r.pattern != "":
		return fmt.Sprintf("route %q (%s)", r.ID, r.pattern)
	default:
		return fmt.Sprintf("route %q (%s)", r.ID, r.Path)
	}
}

// Bool returns a pointer to b, for Route.Force.
func Bool(b bool) *bool {
	return &b
}
