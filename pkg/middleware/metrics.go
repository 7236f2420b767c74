package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

// unmatched labels attempts that never matched a route.
const unmatched = "unmatched"

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wayfinder").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "wayfinder",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	inFlight           prometheus.Gauge
	eventsDropped      prometheus.Counter
}

// globalMetrics is created on the first call to Prometheus. Collectors can
// only be registered once per registry, so later calls share it.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation attempts by route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation attempt duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by route and error code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_in_flight",
			Help:        "Navigation attempts currently running, superseded ones included",
			ConstLabels: config.ConstLabels,
		}),

		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_dropped_total",
			Help:        "Lifecycle events dropped because a subscriber channel was full",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects navigation metrics.
//
// Metrics collected:
//   - wayfinder_navigations_total: Counter of attempts by route and outcome
//   - wayfinder_navigation_duration_seconds: Histogram of attempt duration
//   - wayfinder_navigation_errors_total: Counter of failures by route and code
//   - wayfinder_navigations_in_flight: Gauge of running attempts
//   - wayfinder_events_dropped_total: Counter of dropped events (see WatchBus)
//
// The route label is the deepest matched route's pattern, which keeps the
// label set bounded by the size of the route tree.
//
// Example:
//
//	nav, err := navigation.New(navigation.Config{
//	    Routes:     routes,
//	    Middleware: []navigation.Middleware{middleware.Prometheus()},
//	})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) navigation.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return navigation.MiddlewareFunc(func(a *navigation.Attempt, next func() error) error {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		err := next()

		route := routeLabel(a)
		m.navigationDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.navigationsTotal.WithLabelValues(route, a.Outcome.String()).Inc()
		if err != nil {
			m.navigationErrors.WithLabelValues(route, routeerr.Wrap(err).CodeString()).Inc()
		}
		return err
	})
}

func routeLabel(a *navigation.Attempt) string {
	if a.Route == nil {
		return unmatched
	}
	return a.Route.Pattern()
}

// WatchBus mirrors the bus's dropped-event count into
// wayfinder_events_dropped_total on every event. It returns the
// unsubscribe function. It is a no-op before Prometheus is called.
func WatchBus(bus *events.Bus) func() {
	globalMetricsMu.Lock()
	m := globalMetrics
	globalMetricsMu.Unlock()
	if m == nil {
		return func() {}
	}

	var mu sync.Mutex
	var seen uint64
	return bus.Subscribe(func(*events.Event) {
		mu.Lock()
		defer mu.Unlock()
		if dropped := bus.Dropped(); dropped > seen {
			m.eventsDropped.Add(float64(dropped - seen))
			seen = dropped
		}
	})
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the navigation metrics for custom registrations and
// tests.
type Collector struct {
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration *prometheus.HistogramVec
	NavigationErrors   *prometheus.CounterVec
	InFlight           prometheus.Gauge
	EventsDropped      prometheus.Counter
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		NavigationsTotal:   globalMetrics.navigationsTotal,
		NavigationDuration: globalMetrics.navigationDuration,
		NavigationErrors:   globalMetrics.navigationErrors,
		InFlight:           globalMetrics.inFlight,
		EventsDropped:      globalMetrics.eventsDropped,
	}
}
