package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

// Default tracer name.
const defaultTracerName = "wayfinder"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "wayfinder").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider.
	TracerProvider trace.TracerProvider

	// IncludeQuery records the query string. Queries may carry tokens, so
	// this is disabled by default.
	IncludeQuery bool

	// Filter determines which attempts to trace.
	// Return true to trace the attempt, false to skip.
	// If nil, all attempts are traced.
	Filter func(a *navigation.Attempt) bool

	// AttributeExtractor adds custom attributes when the attempt ends.
	AttributeExtractor func(a *navigation.Attempt) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeQuery enables recording the query string.
func WithIncludeQuery(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeQuery = include
	}
}

// WithFilter sets a filter function for attempts.
func WithFilter(filter func(a *navigation.Attempt) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(a *navigation.Attempt) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{TracerName: defaultTracerName}
}

// OpenTelemetry creates middleware that traces every navigation attempt.
//
// The middleware:
//   - Starts a span per attempt and passes its context to loaders and
//     content producers through Attempt.Ctx
//   - Records the resolved pathname, matched route and outcome
//   - Records failures with their error code and sets the span status
//
// Superseded attempts end with status Unset and outcome "superseded".
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// configured:
//
//	otel.SetTracerProvider(tp)
//	nav, err := navigation.New(navigation.Config{
//	    Middleware: []navigation.Middleware{middleware.OpenTelemetry()},
//	})
func OpenTelemetry(opts ...OTelOption) navigation.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return navigation.MiddlewareFunc(func(a *navigation.Attempt, next func() error) error {
		if config.Filter != nil && !config.Filter(a) {
			return next()
		}

		ctx, span := tracer.Start(a.Ctx, "navigate",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("wayfinder.href", a.Href),
				attribute.Int64("wayfinder.token", int64(a.Token)),
			),
		)
		defer span.End()
		a.Ctx = ctx

		err := next()

		attrs := []attribute.KeyValue{
			attribute.String("wayfinder.outcome", a.Outcome.String()),
		}
		if a.Context != nil {
			attrs = append(attrs, attribute.String("wayfinder.pathname", a.Context.Pathname))
			if config.IncludeQuery && len(a.Context.Query) > 0 {
				attrs = append(attrs, attribute.String("wayfinder.query", a.Context.Query.Encode()))
			}
		}
		if a.Route != nil {
			attrs = append(attrs, attribute.String("wayfinder.route", a.Route.Pattern()))
			span.SetName("navigate " + a.Route.Pattern())
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(a)...)
		}
		span.SetAttributes(attrs...)

		var rerr *routeerr.RouteError
		switch {
		case errors.As(err, &rerr):
			span.RecordError(err)
			span.SetAttributes(attribute.String("wayfinder.error_code", rerr.CodeString()))
			span.SetStatus(codes.Error, rerr.Message)
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case a.Outcome == navigation.OutcomeDone || a.Outcome == navigation.OutcomeUnchanged:
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// SpanFromContext retrieves the navigation span from a producer's context.
// Returns nil if no span is recording.
//
// Example:
//
//	func(ctx context.Context, nav *location.Context) (outlet.Content, error) {
//	    if span := middleware.SpanFromContext(ctx); span != nil {
//	        span.SetAttributes(attribute.Int("rows", len(rows)))
//	    }
//	    ...
//	}
func SpanFromContext(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}
