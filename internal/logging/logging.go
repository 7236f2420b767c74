// Package logging builds the slog loggers used by the wayfinder CLI.
//
// Logs go to a text or JSON handler. When a Sentry DSN is configured,
// warnings and errors are also sent to Sentry, and errors create issues.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"go.opentelemetry.io/otel/trace"
)

// Config configures a logger.
type Config struct {
	// Level is debug, info, warn or error. Default: info.
	Level string

	// Format is text or json. Default: text.
	Format string

	// Output receives log lines. Default: os.Stderr.
	Output io.Writer

	// SentryDSN enables the Sentry fan-out when set.
	SentryDSN string

	// Environment is reported to Sentry. Default: production.
	Environment string
}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ParseLevel parses a level name.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
	return level, nil
}

// New creates a logger. The returned function flushes buffered Sentry
// events and must be called before exit. If Sentry cannot be initialised
// the logger falls back to local output only and logs why.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var local slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		local = slog.NewTextHandler(out, opts)
	case "json":
		local = slog.NewJSONHandler(out, opts)
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	noop := func() {}
	if cfg.SentryDSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop, nil
	}

	env := cfg.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop, nil
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(local, sentryHandler)
	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(NewLogHandlerDecorator(combined, extractors...)), flush, nil
}

// TraceID adds the trace_id of the span in the logging context.
func TraceID(ctx context.Context) (slog.Attr, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Attr{}, false
	}
	return slog.String("trace_id", sc.TraceID().String()), true
}
