// Package middleware provides navigation middleware for observability.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//   - Structured logging middleware
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware starts a span for every navigation attempt.
// Spans carry the href, the token, the resolved pathname, the matched route
// pattern and the outcome. Failed attempts record their error code.
//
//	nav, err := navigation.New(navigation.Config{
//	    Routes: routes,
//	    Middleware: []navigation.Middleware{
//	        middleware.OpenTelemetry(),
//	    },
//	})
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("docs-site"),
//	    middleware.WithIncludeQuery(true),
//	    middleware.WithFilter(func(a *navigation.Attempt) bool {
//	        return a.Href != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - wayfinder_navigations_total: Attempts by route and outcome
//   - wayfinder_navigation_duration_seconds: Attempt duration histogram
//   - wayfinder_navigation_errors_total: Failures by route and error code
//   - wayfinder_navigations_in_flight: Running attempts
//   - wayfinder_events_dropped_total: Lifecycle events lost to full channels
//
// Expose them on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # Context Propagation
//
// Middleware may replace Attempt.Ctx. Loaders and content producers receive
// the replaced context, so calls they make inherit the navigation span:
//
//	Loader: func(ctx context.Context, nav *location.Context) (any, error) {
//	    req, _ := http.NewRequestWithContext(ctx, "GET", api+nav.Params["id"], nil)
//	    ...
//	}
package middleware
