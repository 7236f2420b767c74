package navigation

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

// fail reports rerr and renders the fallback for it. Like every other
// effect, nothing happens once the attempt is superseded.
func (c *Controller) fail(at *attempt, rerr *routeerr.RouteError) (Outcome, error) {
	if !c.effect(at.Token, func() {
		c.markStale()
		e := events.New(events.Error, at.Token, at.nav)
		e.Err = rerr
		c.bus.Publish(e)
	}) {
		return OutcomeSuperseded, nil
	}

	c.log.ErrorContext(at.Ctx, "navigation failed",
		slog.String("href", at.Href),
		slog.Uint64("token", at.Token),
		slog.String("code", rerr.CodeString()),
		slog.Any("error", rerr),
	)

	if err := c.renderFallback(at, rerr); err != nil {
		c.log.ErrorContext(at.Ctx, "fallback rendering failed",
			slog.String("href", at.Href),
			slog.Any("error", err),
		)
		c.log.ErrorContext(at.Ctx, "original navigation error",
			slog.String("href", at.Href),
			slog.String("code", rerr.CodeString()),
			slog.Any("error", rerr),
		)
	}

	if !c.active(at.Token) {
		return OutcomeSuperseded, rerr
	}
	return OutcomeFailed, rerr
}

// renderFallback shows rerr in the last outlet the attempt reached, or the
// root outlet. The configured fallback route is used when it has content;
// otherwise the built-in error view is rendered, straight into the
// document body when there is no outlet at all.
func (c *Controller) renderFallback(at *attempt, rerr *routeerr.RouteError) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("fallback panicked: %v", v)
		}
	}()

	target := at.last
	if target == nil {
		target, _ = outlet.Find(c.root)
	}

	if c.fallback != nil && c.fallback.Content != nil {
		nav := at.nav
		if nav == nil {
			nav = &location.Context{Href: at.Href, Params: map[string]string{}}
		}
		nav = nav.WithError(rerr)

		content, err := produce(at.Ctx, c.fallback, nav)
		if err == nil && content.IsZero() {
			err = ErrNoContent
		}
		if err != nil {
			return err
		}
		if target == nil {
			return routeerr.RenderTargetMissing()
		}

		var derr error
		c.effect(at.Token, func() {
			if _, derr = target.Dispatch(at.Ctx, c.fallback.ID, content, true); derr != nil {
				return
			}
			if c.fallback.Title != "" {
				c.doc.SetTitle(c.fallback.Title)
			}
			c.lastOutlet = target
		})
		return derr
	}

	view := c.errorView(at.nav)
	var derr error
	c.effect(at.Token, func() {
		if target != nil {
			_, derr = target.Dispatch(at.Ctx, fallbackID, view.Content(rerr), true)
			c.lastOutlet = target
			return
		}
		c.clearBodyError()
		c.bodyError, derr = vdom.Mount(c.doc.Body(), view.Render(rerr))
	})
	return derr
}

// clearBodyError removes an error view mounted into the body. The caller
// holds c.mu.
func (c *Controller) clearBodyError() {
	if c.bodyError != nil {
		c.bodyError.Unmount()
		c.bodyError = nil
	}
}
