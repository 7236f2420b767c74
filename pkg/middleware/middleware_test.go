package middleware

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/navtest"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/router"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// newController wires mw into a controller with a home page, a user page
// and a page whose producer returns no content.
func newController(t *testing.T, mw ...navigation.Middleware) (*navigation.Controller, *navtest.Fixture) {
	t.Helper()
	f := navtest.NewFixture(t, "/")
	c, err := navigation.New(navigation.Config{
		Root:     f.Root,
		Document: f.Doc,
		History:  f.History,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Routes: []*router.Route{
			{Path: "/", Content: navtest.Text("home").Func()},
			{Path: "/users/:id", Content: navtest.Text("user").Func()},
			{Path: "/broken", Content: func(context.Context, *location.Context) (outlet.Content, error) {
				return outlet.Content{}, nil
			}},
		},
		Middleware: mw,
	})
	require.NoError(t, err)
	t.Cleanup(c.Wait)
	return c, f
}

// =============================================================================
// Recording tracer
// =============================================================================

type recordingSpan struct {
	trace.Span

	mu     sync.Mutex
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordingSpan) SpanContext() trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{1},
	})
}

func (s *recordingSpan) IsRecording() bool { return true }

func (s *recordingSpan) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *recordingSpan) attr(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs[attribute.Key(key)].Emit()
}

type recordingTracer struct {
	trace.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{
		Span:  trace.SpanFromContext(context.Background()),
		name:  name,
		attrs: map[attribute.Key]attribute.Value{},
	}
	cfg := trace.NewSpanStartConfig(opts...)
	span.SetAttributes(cfg.Attributes()...)

	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

func (t *recordingTracer) Spans() []*recordingSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*recordingSpan(nil), t.spans...)
}

type recordingProvider struct {
	trace.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func newRecordingProvider() *recordingProvider {
	base := noop.NewTracerProvider()
	return &recordingProvider{
		TracerProvider: base,
		tracer:         &recordingTracer{Tracer: base.Tracer("")},
	}
}
