package navigation

import (
	"log/slog"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/history"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/router"
)

// Config configures a Controller.
type Config struct {
	// Root is the element the root outlet is searched in, and where link
	// clicks are intercepted.
	// Default: the document body.
	Root *dom.Node

	// Document receives title updates, and the built-in error view when no
	// outlet exists.
	// Default: a new empty document.
	Document *dom.Document

	// History is the session history navigations are written to.
	// Default: an in-memory history at DefaultOrigin.
	History history.History

	// BasePrefix is the path all routes are rooted under. It may contain
	// parameters, e.g. /app/:tenant.
	// Default: "/".
	BasePrefix string

	// Routes is the route tree.
	Routes []*router.Route

	// Fallback renders failed navigations. Its content producer receives
	// the context with Error set. Without one, the built-in error view is
	// shown.
	Fallback *router.Route

	// Languages are the preferred languages of the built-in error view,
	// e.g. "ko" or an Accept-Language value.
	// Default: English.
	Languages []string

	// UseClickInterception routes clicks on internal links through Go.
	// Default: true.
	UseClickInterception *bool

	// AutoNavigate navigates to the current history location on Start.
	// Default: true.
	AutoNavigate *bool

	// EventBuffer is the default buffer of channels returned by Events.
	// Default: 16.
	EventBuffer int

	// Logger receives navigation failures.
	// Default: slog.Default().
	Logger *slog.Logger

	// Middleware wraps every navigation attempt, first to last.
	Middleware []Middleware
}

// Bool returns a pointer to b, for the *bool fields of Config.
func Bool(b bool) *bool {
	return &b
}

func (c Config) withDefaults() Config {
	if c.Document == nil {
		c.Document = dom.NewDocument("")
	}
	if c.Root == nil {
		c.Root = c.Document.Body()
	}
	if c.History == nil {
		c.History = history.MustMemory(location.DefaultOrigin + "/")
	}
	if c.BasePrefix == "" {
		c.BasePrefix = "/"
	}
	if c.UseClickInterception == nil {
		c.UseClickInterception = Bool(true)
	}
	if c.AutoNavigate == nil {
		c.AutoNavigate = Bool(true)
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 16
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
