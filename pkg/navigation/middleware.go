package navigation

import (
	"context"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/router"
)

// Attempt is one navigation as seen by middleware.
type Attempt struct {
	// Ctx is passed to loaders and content producers. Middleware may
	// replace it before calling next, e.g. to start a trace span.
	Ctx context.Context

	// Href is the requested href, before resolution.
	Href string

	// Token identifies the attempt.
	Token uint64

	// Context is the resolved navigation context. It is nil until the
	// href is resolved, and stays nil when resolution fails.
	Context *location.Context

	// Route is the deepest matched route, or nil when nothing matched.
	Route *router.Route

	// Outcome is set when next returns.
	Outcome Outcome
}

// Middleware wraps navigation attempts. next returns the classified
// *routeerr.RouteError of a failed attempt and nil otherwise; the error is
// informational and never reaches the caller of Go.
type Middleware interface {
	Handle(a *Attempt, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(a *Attempt, next func() error) error

// Handle calls f.
func (f MiddlewareFunc) Handle(a *Attempt, next func() error) error {
	return f(a, next)
}

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(a *Attempt, mw []Middleware, handler func() error) error {
	if len(mw) == 0 {
		return handler()
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func() error {
			return m.Handle(a, next)
		}
	}

	return chain()
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(a *Attempt, next func() error) error {
		return ComposeMiddleware(a, middleware, next)
	})
}

// Skip bypasses mw for attempts matching condition.
func Skip(condition func(a *Attempt) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(a *Attempt, next func() error) error {
		if condition(a) {
			return next()
		}
		return mw.Handle(a, next)
	})
}
