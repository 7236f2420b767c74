package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer flush()

	logger.Info("hidden")
	logger.Warn("navigation failed", slog.String("href", "/x"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "navigation failed", rec["msg"])
	assert.Equal(t, "/x", rec["href"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{Output: &buf})
	require.NoError(t, err)

	logger.Info("ready", slog.Int("routes", 3))
	assert.Contains(t, buf.String(), "msg=ready")
	assert.Contains(t, buf.String(), "routes=3")
}

func TestNewErrors(t *testing.T) {
	_, _, err := New(Config{Format: "xml"})
	assert.Error(t, err)

	_, _, err = New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewBadDSNFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := New(Config{Output: &buf, SentryDSN: "not a dsn"})
	require.NoError(t, err)
	defer flush()

	assert.Contains(t, buf.String(), "failed to initialize Sentry")
	buf.Reset()
	logger.Error("still logs")
	assert.Contains(t, buf.String(), "still logs")
}

func TestTraceIDExtractor(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{Format: "json", Output: &buf}, TraceID, nil)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0xab},
		SpanID:  trace.SpanID{1},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "traced")
	logger.InfoContext(context.Background(), "untraced")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"trace_id":"ab000000000000000000000000000000"`)
	assert.NotContains(t, lines[1], "trace_id")
}

func TestMultiHandler(t *testing.T) {
	var debug, errs bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "nav").WithGroup("g")

	logger.Debug("step", "n", 1)
	logger.Error("boom", "n", 2)

	assert.Contains(t, debug.String(), "msg=step")
	assert.Contains(t, debug.String(), "msg=boom")
	assert.NotContains(t, errs.String(), "step")
	assert.Contains(t, errs.String(), "component=nav")
	assert.Contains(t, errs.String(), "g.n=2")
}
