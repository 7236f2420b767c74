package navigation

import (
	"context"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/history"
	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/router"
)

// Navigate navigates to href and blocks until the attempt commits, fails,
// is skipped or is superseded. Navigation errors are reported through
// events, the log and the fallback view; they are never returned.
func (c *Controller) Navigate(ctx context.Context, href string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &Attempt{Ctx: ctx, Href: href, Token: c.token.Inc()}
	_ = ComposeMiddleware(a, c.middleware, func() error {
		var err error
		a.Outcome, err = c.run(a)
		return err
	})
	return a.Outcome
}

// attempt is the state of one run.
type attempt struct {
	*Attempt
	nav   *location.Context
	last  *outlet.Outlet
	title string
}

func (c *Controller) run(a *Attempt) (Outcome, error) {
	at := &attempt{Attempt: a}

	nav, err := location.Resolve(a.Href, c.basePrefix, c.history.Location())
	if err != nil {
		return c.fail(at, routeerr.Wrap(err))
	}
	if c.unchanged(nav) {
		return OutcomeUnchanged, nil
	}
	at.nav = nav
	a.Context = nav
	nav.SetProgressReporter(c.progressReporter(a.Token, nav))

	var herr error
	ok := c.effect(a.Token, func() {
		c.markStale()
		herr = c.writeHistory(nav)
		if herr == nil {
			c.publish(events.Begin, a.Token, nav)
		}
	})
	if !ok {
		return OutcomeSuperseded, nil
	}
	if herr != nil {
		return c.fail(at, routeerr.Wrap(herr))
	}

	matches := c.tree.Match(nav.Pathname)
	if len(matches) == 0 {
		return c.fail(at, routeerr.NotFound(nav.Pathname))
	}
	deepest := matches[len(matches)-1]
	a.Route = deepest
	nav.Params = c.tree.Params(deepest, nav.Pathname)

	if deepest.Loader != nil {
		data, err := load(a.Ctx, deepest, nav)
		if !c.active(a.Token) {
			return OutcomeSuperseded, nil
		}
		if err != nil {
			return c.fail(at, routeerr.ContentLoadFailed(err))
		}
		nav.Data = data
	}

	target, err := outlet.Find(c.root)
	if err != nil {
		return c.fail(at, routeerr.Wrap(err))
	}

	for _, r := range matches {
		if !c.active(a.Token) {
			return OutcomeSuperseded, nil
		}
		if r.Title != "" {
			at.title = r.Title
		}
		if r.Content == nil {
			continue
		}
		at.last = target

		if target.Shows(r.ID) && !r.ForceRerender() {
			// Unchanged ancestor: keep its mount and descend.
			if next, ok := target.Next(); ok {
				target = next
			}
			continue
		}

		content, err := produce(a.Ctx, r, nav)
		if !c.active(a.Token) {
			return OutcomeSuperseded, nil
		}
		if err == nil && content.IsZero() {
			err = ErrNoContent
		}
		if err != nil {
			return c.fail(at, routeerr.ContentLoadFailed(err))
		}

		var derr error
		if !c.effect(a.Token, func() {
			_, derr = target.Dispatch(a.Ctx, r.ID, content, r.ForceRerender())
		}) {
			return OutcomeSuperseded, nil
		}
		if derr != nil {
			return c.fail(at, routeerr.ContentRenderFailed(derr))
		}

		if next, ok := target.Next(); ok {
			target = next
		}
	}

	if !c.effect(a.Token, func() {
		if at.title != "" {
			c.doc.SetTitle(at.title)
		}
		c.clearBodyError()
		c.lastOutlet = at.last
		c.stateMu.Lock()
		c.current = nav
		c.stale = false
		c.stateMu.Unlock()
		c.publish(events.Done, a.Token, nav)
	}) {
		return OutcomeSuperseded, nil
	}
	return OutcomeDone, nil
}

// writeHistory pushes nav unless history already shows it.
func (c *Controller) writeHistory(nav *location.Context) error {
	state := history.State{BasePrefix: nav.BasePrefix}
	if loc := c.history.Location(); loc != nil && loc.String() == nav.Href {
		return c.history.ReplaceState(state, nav.Href)
	}
	return c.history.PushState(state, nav.Href)
}

// progressReporter clamps reports to [0, 100] and drops them once the
// attempt is superseded.
func (c *Controller) progressReporter(token uint64, nav *location.Context) func(int) {
	return func(percent int) {
		percent = min(max(percent, 0), 100)
		c.effect(token, func() {
			e := events.New(events.Progress, token, nav)
			e.Progress = percent
			c.bus.Publish(e)
		})
	}
}

// produce calls the route's producer, turning a panic into an error.
func produce(ctx context.Context, r *router.Route, nav *location.Context) (content outlet.Content, err error) {
	defer func() {
		if v := recover(); v != nil {
			content, err = outlet.Content{}, routeerr.FromPanic(v)
		}
	}()
	return r.Content(ctx, nav)
}

func load(ctx context.Context, r *router.Route, nav *location.Context) (data any, err error) {
	defer func() {
		if v := recover(); v != nil {
			data, err = nil, routeerr.FromPanic(v)
		}
	}()
	return r.Loader(ctx, nav)
}
