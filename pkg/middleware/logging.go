package middleware

import (
	"log/slog"
	"time"

	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

// Logging creates middleware that logs one line per navigation attempt.
// Committed and unchanged attempts log at Debug, superseded ones at Info
// and failures at Warn. A nil logger uses slog.Default().
func Logging(logger *slog.Logger) navigation.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return navigation.MiddlewareFunc(func(a *navigation.Attempt, next func() error) error {
		start := time.Now()
		err := next()

		attrs := []any{
			slog.String("href", a.Href),
			slog.Uint64("token", a.Token),
			slog.String("outcome", a.Outcome.String()),
			slog.Duration("duration", time.Since(start)),
		}
		if a.Route != nil {
			attrs = append(attrs, slog.String("route", a.Route.Pattern()))
		}

		switch {
		case err != nil:
			rerr := routeerr.Wrap(err)
			attrs = append(attrs, slog.String("code", rerr.CodeString()), slog.String("error", rerr.Message))
			logger.Warn("navigation failed", attrs...)
		case a.Outcome == navigation.OutcomeSuperseded:
			logger.Info("navigation superseded", attrs...)
		default:
			logger.Debug("navigation", attrs...)
		}
		return err
	})
}
