// Package navigation drives client-side navigation.
//
// A Controller resolves an href, matches it against the route tree and
// renders every matched route into the chain of outlets below the root
// element, keeping history and the document title in sync:
//
//	nav, err := navigation.New(navigation.Config{
//		Root:    doc.Body(),
//		History: hist,
//		Routes:  routes,
//	})
//	if err != nil {
//		return err
//	}
//	nav.Start()
//	defer nav.Stop()
//
//	nav.Go("/users/42")
//
// Every call to Go starts a new attempt and supersedes the ones still in
// flight. A superseded attempt stops at its next step without any visible
// effect: it writes no history, emits no event and mounts nothing.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/errorview"
	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/history"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/router"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// ErrNoContent is the cause of a load failure when a producer returns
// neither content nor an error.
var ErrNoContent = errors.New("navigation: content producer returned no content")

// fallbackID identifies fallback and error view content in outlets.
const fallbackID = "wayfinder:fallback"

// Outcome is how a navigation attempt ended.
type Outcome uint8

const (
	// OutcomeDone means the attempt rendered and committed.
	OutcomeDone Outcome = iota

	// OutcomeFailed means the attempt failed and the error was rendered.
	OutcomeFailed

	// OutcomeSuperseded means a later attempt took over.
	OutcomeSuperseded

	// OutcomeUnchanged means the href was already the committed one.
	OutcomeUnchanged
)

// String returns the outcome name used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Controller runs navigations for one root element.
type Controller struct {
	tree       *router.Tree
	root       *dom.Node
	doc        *dom.Document
	history    history.History
	basePrefix string
	fallback   *router.Route
	languages  []string
	clicks     bool
	auto       bool
	buffer     int
	log        *slog.Logger
	bus        *events.Bus
	middleware []Middleware

	// token is the active token. An attempt may only produce effects
	// while it holds the active token.
	token atomic.Uint64

	// mu serializes effects. Fields below it are owned by effects.
	mu         sync.Mutex
	lastOutlet *outlet.Outlet
	bodyError  *vdom.Root

	stateMu sync.RWMutex
	current *location.Context
	// stale is set once a later attempt touched history or the outlets,
	// so current no longer describes what is shown.
	stale bool

	wg sync.WaitGroup

	startMu sync.Mutex
	stops   []func()
}

// New compiles the route tree and returns a stopped controller. Route
// configuration errors are returned here, never during navigation.
func New(cfg Config) (*Controller, error) {
	cfg = cfg.withDefaults()

	tree, err := router.Compile(cfg.Routes, cfg.BasePrefix)
	if err != nil {
		return nil, err
	}

	fallback := cfg.Fallback
	if fallback != nil && fallback.ID == "" {
		fallback.ID = fallbackID
	}

	return &Controller{
		tree:       tree,
		root:       cfg.Root,
		doc:        cfg.Document,
		history:    cfg.History,
		basePrefix: cfg.BasePrefix,
		fallback:   fallback,
		languages:  cfg.Languages,
		clicks:     *cfg.UseClickInterception,
		auto:       *cfg.AutoNavigate,
		buffer:     cfg.EventBuffer,
		log:        cfg.Logger,
		bus:        events.NewBus(),
		middleware: cfg.Middleware,
	}, nil
}

// Tree returns the compiled route tree.
func (c *Controller) Tree() *router.Tree {
	return c.tree
}

// Document returns the controlled document.
func (c *Controller) Document() *dom.Document {
	return c.doc
}

// History returns the session history.
func (c *Controller) History() history.History {
	return c.history
}

// Current returns the committed context, or nil before the first
// successful navigation.
func (c *Controller) Current() *location.Context {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.current
}

// Subscribe registers an observer for the given event types, or for all
// types when none are given. Observers run while navigation effects are
// serialized: they must not call Navigate or Wait.
func (c *Controller) Subscribe(fn events.Observer, types ...events.Type) (unsubscribe func()) {
	return c.bus.Subscribe(fn, types...)
}

// Events returns a channel of lifecycle events. Events that do not fit into
// the buffer are dropped.
func (c *Controller) Events(types ...events.Type) (<-chan *events.Event, func()) {
	return c.bus.Channel(c.buffer, types...)
}

// Bus returns the event bus.
func (c *Controller) Bus() *events.Bus {
	return c.bus
}

// Go navigates to href in the background.
func (c *Controller) Go(href string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Navigate(context.Background(), href)
	}()
}

// GoBase navigates to the base prefix in effect.
func (c *Controller) GoBase() {
	c.Go(c.base())
}

// Wait blocks until every navigation started with Go has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Start connects the controller to history traversal and, when enabled,
// to link clicks below the root, then navigates to the current history
// location when AutoNavigate is set. Start is a no-op on a started
// controller.
func (c *Controller) Start() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.stops != nil {
		return
	}

	c.stops = append(c.stops, c.history.OnPopState(func(e history.Entry) {
		c.Go(e.URL)
	}))
	if c.clicks {
		c.stops = append(c.stops, c.root.AddEventListener("click", c.handleClick))
	}
	if c.auto {
		c.Go(c.history.Location().String())
	}
}

// Stop disconnects what Start connected. Navigations in flight keep
// running; use Wait to wait for them.
func (c *Controller) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	for _, stop := range c.stops {
		stop()
	}
	c.stops = nil
}

// unchanged reports whether nav is the committed context and still shown.
func (c *Controller) unchanged(nav *location.Context) bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.current != nil && !c.stale && c.current.Href == nav.Href
}

// markStale records that the committed context no longer matches what is
// shown. The caller holds c.mu.
func (c *Controller) markStale() {
	c.stateMu.Lock()
	c.stale = true
	c.stateMu.Unlock()
}

func (c *Controller) base() string {
	if cur := c.Current(); cur != nil {
		return cur.BasePrefix
	}
	return location.CaptureBase(c.basePrefix, c.history.Location().EscapedPath())
}

// effect runs fn if token is still active. It reports false when the
// attempt was superseded.
func (c *Controller) effect(token uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Load() != token {
		return false
	}
	fn()
	return true
}

func (c *Controller) active(token uint64) bool {
	return c.token.Load() == token
}

func (c *Controller) publish(typ events.Type, token uint64, nav *location.Context) *events.Event {
	e := events.New(typ, token, nav)
	c.bus.Publish(e)
	return e
}

func (c *Controller) errorView(nav *location.Context) *errorview.View {
	opts := []errorview.Option{errorview.WithHome(c.base())}
	if nav != nil {
		opts[0] = errorview.WithHome(nav.BasePrefix)
	}
	if len(c.languages) > 0 {
		opts = append(opts, errorview.WithLanguage(c.languages...))
	}
	if b, ok := c.history.(interface{ Back() bool }); ok {
		opts = append(opts, errorview.WithBack(func() { b.Back() }))
	}
	return errorview.New(opts...)
}
