package client

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/christophergoltz/elogio-sub001/internal/parse"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

// calendarInitializer performs the three-phase module bootstrap. The
// server rejects calendar data queries until the module's presentation
// model has been fetched, so phase 3 is the hard precondition; the rest
// is best effort.
type calendarInitializer struct {
	c *Client
}

// ensureCalendar initializes the calendar module once per session. The
// initialized flag is set even when the bootstrap failed partway:
// retrying the whole sequence on every query makes things worse, and a
// rejected data query surfaces the problem anyway.
func (c *Client) ensureCalendar(ctx context.Context) error {
	if c.state.CalendarInitialized() {
		return nil
	}

	init := &calendarInitializer{c}
	err := init.run(ctx)

	c.state.SetCalendarInitialized()

	if err != nil {
		c.logger.Warn("calendar bootstrap incomplete", slog.Any("error", err))
	}

	return err
}

func (ci *calendarInitializer) run(ctx context.Context) error {
	if err := ci.navigate(ctx); err != nil {
		return err
	}

	ci.prepareModule(ctx)

	// Phase 3 must not start before every phase-2 call has returned.
	return ci.fetchModulePresentationModel(ctx)
}

// navigate visits the intranet section and the module page, unless a
// background prefetch already did. The wait for that prefetch is
// bounded; past it the pages are fetched inline.
func (ci *calendarInitializer) navigate(ctx context.Context) error {
	if ci.c.state.NavigationPrefetched() {
		return nil
	}

	wait := ci.c.cfg.Prefetch.NavigationWait
	if wait <= 0 {
		wait = 3 * time.Second
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ci.c.navDone:
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	if ci.c.state.NavigationPrefetched() {
		return nil
	}

	return ci.c.visitNavigationPages(ctx)
}

// prepareModule runs the order-independent phase-2 calls concurrently.
// Any subset may fail without aborting the bootstrap.
func (ci *calendarInitializer) prepareModule(ctx context.Context) {
	c := ci.c

	g, gctx := errgroup.WithContext(ctx)

	for _, script := range []string{scriptCalendar, scriptCalendarDeferred} {
		script := script

		g.Go(func() error {
			url := c.cfg.Server.URL + script
			if _, err := c.http.Get(gctx, url, c.state.SessionCookie); err != nil {
				c.logger.Warn("fetching module script failed",
					slog.String("script", script),
					slog.Any("error", err),
				)
			}

			return nil
		})
	}

	g.Go(func() error {
		body := rpc.ConnectModule(c.state.SessionID, rpc.ModuleCalendar, c.clock())
		if _, err := c.call(gctx, body); err != nil {
			c.logger.Warn("module connect failed", slog.Any("error", err))
		}

		return nil
	})

	g.Go(func() error {
		body := rpc.GlobalPresentationModel(c.state.SessionID, c.clock())

		msg, err := c.call(gctx, body)
		if err != nil {
			c.logger.Warn("global presentation model failed", slog.Any("error", err))
			return nil
		}

		if id := contextIDFrom(msg); id != 0 {
			c.state.CalendarContextID = id
		}

		return nil
	})

	g.Go(func() error {
		body := rpc.IntranetParameter(c.state.SessionID, c.clock())

		msg, err := c.call(gctx, body)
		if err != nil {
			c.logger.Warn("intranet parameter failed", slog.Any("error", err))
			return nil
		}

		// The id found here is authoritative over the one from the
		// global connect.
		if id := parse.RealEmployeeID(msg); id != 0 {
			c.state.SetRealEmployeeID(id)
		}

		return nil
	})

	g.Go(func() error {
		c.loadTranslations(gctx, calendarTranslationPrefixes)
		return nil
	})

	_ = g.Wait()
}

func (ci *calendarInitializer) fetchModulePresentationModel(ctx context.Context) error {
	c := ci.c

	body := rpc.ModulePresentationModel(c.state.SessionID, c.state.CalendarContextID, c.clock())

	if _, err := c.call(ctx, body); err != nil {
		return err
	}

	return nil
}

// prefetchNavigation is the background counterpart of navigate, started
// right after login so the inline bootstrap usually finds the pages
// already visited.
func (c *Client) prefetchNavigation(ctx context.Context) error {
	err := c.visitNavigationPages(ctx)

	c.navOnce.Do(func() {
		close(c.navDone)
	})

	return err
}

func (c *Client) visitNavigationPages(ctx context.Context) error {
	for _, path := range []string{pathIntranet, pathCalendarPage} {
		if _, err := c.http.Get(ctx, c.cfg.Server.URL+path, c.state.SessionCookie); err != nil {
			return err
		}
	}

	c.state.SetNavigationPrefetched()

	return nil
}

// contextIDFrom pulls the module context id out of the global
// presentation model: the first small positive integer in the data
// tokens that is not a string-table reference.
func contextIDFrom(msg *rpc.Message) int {
	for _, tok := range msg.DataTokens {
		if tok.Kind != rpc.KindInteger {
			continue
		}

		v := int(tok.Int)
		if v > len(msg.StringTable) && v < 100000 {
			return v
		}
	}

	return 0
}
