// Package navtest provides helpers for testing code built on the
// navigation controller: fixture documents, an event recorder and content
// producers that count calls or block until released.
package navtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/atomic"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/history"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/router"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// Origin is the origin of fixture histories.
const Origin = "http://localhost"

// Fixture is a document whose body holds a root outlet, and a history at
// Origin.
type Fixture struct {
	Doc     *dom.Document
	Root    *dom.Node
	Outlet  *outlet.Outlet
	History *history.Memory
}

// NewFixture returns a fixture whose history starts at path.
func NewFixture(tb testing.TB, path string) *Fixture {
	tb.Helper()

	doc := dom.NewDocument("fixture")
	root := dom.NewElement("main", dom.Attribute{Name: "id", Value: "app"})
	o := outlet.New()
	if err := root.AppendChild(o.Element()); err != nil {
		tb.Fatalf("navtest: %v", err)
	}
	if err := doc.Body().AppendChild(root); err != nil {
		tb.Fatalf("navtest: %v", err)
	}

	h, err := history.NewMemory(Origin + path)
	if err != nil {
		tb.Fatalf("navtest: %v", err)
	}
	return &Fixture{Doc: doc, Root: root, Outlet: o, History: h}
}

// Text returns the text shown below the root.
func (f *Fixture) Text() string {
	return f.Root.TextContent()
}

// Click dispatches a primary click on the first link with href below the
// root and reports whether the default action was prevented.
func (f *Fixture) Click(tb testing.TB, href string) bool {
	tb.Helper()
	link := f.Root.Find(func(n *dom.Node) bool {
		return n.Tag == "a" && n.GetAttr("href") == href
	})
	if link == nil {
		tb.Fatalf("navtest: no link to %q", href)
	}
	return !link.Dispatch(dom.NewClick())
}

// =============================================================================
// Recorder
// =============================================================================

// Recorder records the events published on a bus.
type Recorder struct {
	mu     sync.Mutex
	events []*events.Event
	stop   func()
}

// Record subscribes a recorder to bus. It unsubscribes when the test ends.
func Record(tb testing.TB, bus *events.Bus) *Recorder {
	r := &Recorder{}
	r.stop = bus.Subscribe(func(e *events.Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})
	tb.Cleanup(r.stop)
	return r
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []events.Type {
	evs := r.Events()
	out := make([]events.Type, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

// Of returns the recorded events of type typ.
func (r *Recorder) Of(typ events.Type) []*events.Event {
	var out []*events.Event
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the last event of type typ, or nil.
func (r *Recorder) Last(typ events.Type) *events.Event {
	evs := r.Of(typ)
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// =============================================================================
// Producers
// =============================================================================

// Counter wraps a producer and counts its calls.
type Counter struct {
	calls atomic.Int64
	fn    router.ContentFunc
}

// Count returns a counter around fn.
func Count(fn router.ContentFunc) *Counter {
	return &Counter{fn: fn}
}

// Text returns a counter around a producer rendering <p>s</p>.
func Text(s string) *Counter {
	return Count(func(context.Context, *location.Context) (outlet.Content, error) {
		return outlet.FromVNode(vdom.P(s)), nil
	})
}

// Func returns the counting producer.
func (c *Counter) Func() router.ContentFunc {
	return func(ctx context.Context, nav *location.Context) (outlet.Content, error) {
		c.calls.Inc()
		return c.fn(ctx, nav)
	}
}

// Calls returns the number of calls.
func (c *Counter) Calls() int {
	return int(c.calls.Load())
}

// Gate is a producer that blocks every call until Release.
type Gate struct {
	content outlet.Content
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int64
}

// NewGate returns a closed gate producing content.
func NewGate(content outlet.Content) *Gate {
	return &Gate{
		content: content,
		entered: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

// Func returns the blocking producer.
func (g *Gate) Func() router.ContentFunc {
	return func(ctx context.Context, _ *location.Context) (outlet.Content, error) {
		g.calls.Inc()
		g.entered <- struct{}{}
		select {
		case <-g.release:
			return g.content, nil
		case <-ctx.Done():
			return outlet.Content{}, ctx.Err()
		}
	}
}

// WaitEntered blocks until a call has entered the gate, failing the test
// after a second.
func (g *Gate) WaitEntered(tb testing.TB) {
	tb.Helper()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		tb.Fatal("navtest: producer was not called")
	}
}

// Release unblocks all current and future calls.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Calls returns the number of calls.
func (g *Gate) Calls() int {
	return int(g.calls.Load())
}
