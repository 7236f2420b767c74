package location

import (
	"net/url"
	"sync"

	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

// Context is the resolved description of one navigation target.
//
// A Context is created by Resolve for every navigation attempt. The
// navigation controller fills in Params after matching and binds a progress
// reporter; the context becomes the committed one only when the navigation
// completes.
type Context struct {
	// Href is the full URL, e.g. https://example.com/users/1?tab=a#top.
	Href string

	// Origin is scheme and host, e.g. https://example.com.
	Origin string

	// BasePrefix is the concrete base path in effect, e.g. /app/acme for
	// the template /app/:tenant.
	BasePrefix string

	// Path is Href without the origin, e.g. /users/1?tab=a#top.
	Path string

	// Pathname is the canonical path without query and hash.
	Pathname string

	// Query holds the parsed query string.
	Query url.Values

	// Hash is the fragment including the leading "#", or "".
	Hash string

	// Params are the values captured by the deepest matched route.
	Params map[string]string

	// Data is the value returned by the deepest route's loader, if any.
	Data any

	// Error is set on the context handed to a fallback route.
	Error *routeerr.RouteError

	mu       sync.RWMutex
	progress func(int)
}

// Progress reports navigation progress (0-100). It is a no-op unless a
// reporter is bound, and the bound reporter itself ignores stale calls.
func (c *Context) Progress(percent int) {
	c.mu.RLock()
	fn := c.progress
	c.mu.RUnlock()
	if fn != nil {
		fn(percent)
	}
}

// SetProgressReporter binds the function Progress forwards to.
func (c *Context) SetProgressReporter(fn func(int)) {
	c.mu.Lock()
	c.progress = fn
	c.mu.Unlock()
}

// Param returns a matched route parameter.
func (c *Context) Param(name string) string {
	return c.Params[name]
}

// URL parses Href.
func (c *Context) URL() *url.URL {
	u, err := url.Parse(c.Href)
	if err != nil {
		return &url.URL{Path: c.Pathname}
	}
	return u
}

// WithError returns a copy of c carrying err, for fallback content.
// The copy shares the progress reporter.
func (c *Context) WithError(err *routeerr.RouteError) *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := &Context{
		Href:       c.Href,
		Origin:     c.Origin,
		BasePrefix: c.BasePrefix,
		Path:       c.Path,
		Pathname:   c.Pathname,
		Query:      c.Query,
		Hash:       c.Hash,
		Params:     c.Params,
		Data:       c.Data,
		Error:      err,
		progress:   c.progress,
	}
	return out
}
