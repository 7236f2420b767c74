package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vango-dev/wayfinder/pkg/routepath"
)

// Configuration errors.
var (
	ErrInvalidRoute = errors.New("router: invalid route")
	ErrNilRoute     = errors.New("router: nil route")
)

// trailingSlash is appended to every compiled template.
const trailingSlash = "{/}?"

// Tree is a compiled route tree. It is safe for concurrent use.
type Tree struct {
	base   string
	routes []*Route
}

// Compile validates routes, assigns missing IDs and compiles every path
// template under basePrefix. The routes are updated in place, so a route
// must not be shared between trees.
//
// basePrefix may contain pattern variables (e.g. "/app/:tenant"); they are
// part of every compiled pattern.
func Compile(routes []*Route, basePrefix string) (*Tree, error) {
	base := routepath.Clean(basePrefix)
	if err := compileRoutes(routes, base); err != nil {
		return nil, err
	}
	return &Tree{base: base, routes: routes}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(routes []*Route, basePrefix string) *Tree {
	t, err := Compile(routes, basePrefix)
	if err != nil {
		panic(err)
	}
	return t
}

func compileRoutes(routes []*Route, base string) error {
	for i, r := range routes {
		if r == nil {
			return fmt.Errorf("%w at %s[%d]", ErrNilRoute, base, i)
		}
		if err := compileRoute(r, base); err != nil {
			return err
		}
	}
	return nil
}

func compileRoute(r *Route, base string) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var path string
	switch {
	case r.Index:
		if r.Path != "" {
			return fmt.Errorf("%w: %s has a path %q", ErrInvalidRoute, r, r.Path)
		}
		if len(r.Children) > 0 {
			return fmt.Errorf("%w: %s has children", ErrInvalidRoute, r)
		}
		path = base
	default:
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("%w: %s needs a path or the index flag", ErrInvalidRoute, r)
		}
		path = routepath.Join(base, r.Path)
	}

	r.pattern = strings.TrimSuffix(path, "/") + trailingSlash
	var opts []routepath.PatternOption
	if r.IgnoreCase {
		opts = append(opts, routepath.WithIgnoreCase())
	}
	matcher, err := routepath.Compile(r.pattern, opts...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRoute, r, err)
	}
	r.matcher = matcher

	r.force = len(r.Children) == 0
	if r.Force != nil {
		r.force = *r.Force
	}

	return compileRoutes(r.Children, path)
}

// Base returns the cleaned base prefix the tree was compiled under.
func (t *Tree) Base() string {
	return t.base
}

// Routes returns the top-level routes.
func (t *Tree) Routes() []*Route {
	return t.routes
}

// Match returns the chain of routes matching pathname, ordered from the
// outermost ancestor to the deepest route. It returns nil when nothing
// matches.
func (t *Tree) Match(pathname string) []*Route {
	return match(t.routes, pathname)
}

func match(routes []*Route, pathname string) []*Route {
	for _, r := range routes {
		if len(r.Children) > 0 {
			if chain := match(r.Children, pathname); len(chain) > 0 {
				return append([]*Route{r}, chain...)
			}
		}
		if r.Test(pathname) {
			return []*Route{r}
		}
	}
	return nil
}

// Params extracts the parameters of route's pattern from pathname.
// The result is empty, never nil, when nothing is captured.
func (t *Tree) Params(route *Route, pathname string) map[string]string {
	if route == nil || route.matcher == nil {
		return map[string]string{}
	}
	params, ok := route.matcher.Match(pathname)
	if !ok {
		return map[string]string{}
	}
	return params
}

// Walk calls fn for every route in declaration order, parents before
// children, with the depth of the route. Walk stops when fn returns false.
func (t *Tree) Walk(fn func(r *Route, depth int) bool) {
	walk(t.routes, 0, fn)
}

func walk(routes []*Route, depth int, fn func(*Route, int) bool) bool {
	for _, r := range routes {
		if !fn(r, depth) {
			return false
		}
		if !walk(r.Children, depth+1, fn) {
			return false
		}
	}
	return true
}
