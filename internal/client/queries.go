package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/parse"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// WeekPresence fetches the presence data for the week containing date.
func (c *Client) WeekPresence(ctx context.Context, date time.Time) (*models.WeekPresence, error) {
	if !c.state.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if err := c.ensureCalendar(ctx); err != nil {
		return nil, err
	}

	return c.fetchWeek(ctx, timeutil.StartOfWeek(date))
}

func (c *Client) fetchWeek(ctx context.Context, monday time.Time) (*models.WeekPresence, error) {
	body := rpc.WeekData(c.state.SessionID, c.state.DataEmployeeID(), monday, c.clock())

	msg, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}

	week := parse.WeekPresence(msg)
	if week == nil {
		return nil, fmt.Errorf("%w: week of %s", ErrNoData, monday.Format("2006-01-02"))
	}

	return week, nil
}

// MonthPresence returns the presence data for every week overlapping
// the month, fetching uncached weeks with bounded parallelism. The
// result is cached for the session.
func (c *Client) MonthPresence(ctx context.Context, m timeutil.Month) (*models.MonthPresence, error) {
	if !c.state.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if rec, ok := c.presence.Get(m); ok {
		return rec, nil
	}

	if err := c.ensureCalendar(ctx); err != nil {
		return nil, err
	}

	rec, err := c.fetchMonth(ctx, m)
	if err != nil {
		return nil, err
	}

	c.presence.Put(rec)

	// Warm the neighbors in the background: month navigation in the UI
	// almost always moves one month at a time.
	for _, adjacent := range []timeutil.Month{m.Add(-1), m.Add(1)} {
		adjacent := adjacent

		if c.presence.Has(adjacent) {
			continue
		}

		c.tasks.Go("presence-prefetch-"+adjacent.String(), func(ctx context.Context) error {
			if c.presence.Has(adjacent) {
				return nil
			}

			rec, err := c.fetchMonth(ctx, adjacent)
			if err != nil {
				return err
			}

			c.presence.Put(rec)

			return nil
		})
	}

	return rec, nil
}

// fetchMonth fetches all weeks of a month concurrently. The shared
// semaphore bounds parallelism across every caller; unbounded parallel
// RPCs destabilize the upstream session.
func (c *Client) fetchMonth(ctx context.Context, m timeutil.Month) (*models.MonthPresence, error) {
	mondays := m.Weeks()
	weeks := make([]*models.WeekPresence, len(mondays))

	g, gctx := errgroup.WithContext(ctx)

	for i, monday := range mondays {
		i, monday := i, monday

		g.Go(func() error {
			if err := c.weekSem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer c.weekSem.Release(1)

			week, err := c.fetchWeek(gctx, monday)
			if err != nil {
				return err
			}

			weeks[i] = week

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := &models.MonthPresence{Month: m}
	for _, w := range weeks {
		rec.Weeks = append(rec.Weeks, *w)
	}

	return rec, nil
}

// MonthAbsences returns the absence calendar for one month, serving
// from the cache when possible and keeping the coverage buffer around
// the requested month topped up in the background.
func (c *Client) MonthAbsences(ctx context.Context, m timeutil.Month) (*models.AbsenceMonth, error) {
	if !c.state.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if rec, ok := c.absences.Get(m); ok {
		c.extendAbsenceBuffer(m)
		return rec, nil
	}

	if err := c.ensureCalendar(ctx); err != nil {
		return nil, err
	}

	// Cache miss: fetch a window around the month so the immediate
	// neighbors come along for free.
	buffer := c.cfg.Prefetch.BufferMonths
	from := m.Add(-buffer).First()
	to := m.Add(buffer).Last()

	cal, err := c.fetchAbsences(ctx, from, to)
	if err != nil {
		return nil, err
	}

	c.absences.Store(cal)

	rec, ok := c.absences.Get(m)
	if !ok {
		return nil, fmt.Errorf("%w: absences for %s", ErrNoData, m)
	}

	c.extendAbsenceBuffer(m)

	return rec, nil
}

// extendAbsenceBuffer claims and launches the window extensions needed
// to keep the configured slack around m. The claim happens before the
// fetch; a failed fetch rolls the boundary back.
func (c *Client) extendAbsenceBuffer(m timeutil.Month) {
	for _, claim := range c.absences.EnsureBuffer(m) {
		claim := claim

		c.tasks.Go("absence-prefetch-"+claim.Direction.String(), func(ctx context.Context) error {
			cal, err := c.fetchAbsences(ctx, claim.From.First(), claim.To.Last())
			if err == nil {
				c.absences.Store(cal)
			}

			c.absences.FinishPrefetch(claim, err)

			return err
		})
	}
}

func (c *Client) fetchAbsences(ctx context.Context, from, to time.Time) (*models.AbsenceCalendar, error) {
	body := rpc.Absences(c.state.SessionID, c.state.DataEmployeeID(), from, to, c.clock())

	msg, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}

	cal := parse.AbsenceCalendar(msg)
	if cal == nil {
		return nil, fmt.Errorf("%w: absences %s to %s",
			ErrNoData, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	return cal, nil
}

// ColleagueAbsences returns the absent days of the caller's team for
// one month. Results are not cached; the view is rarely revisited.
func (c *Client) ColleagueAbsences(ctx context.Context, m timeutil.Month) ([]models.ColleagueAbsence, error) {
	if !c.state.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if err := c.ensureCalendar(ctx); err != nil {
		return nil, err
	}

	body := rpc.TeamPlanning(c.state.SessionID, c.state.DataEmployeeID(), m, c.clock())

	msg, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}

	out := parse.ColleagueAbsences(msg, m)
	if out == nil {
		return nil, fmt.Errorf("%w: team planning for %s", ErrNoData, m)
	}

	return out, nil
}

// Punch records a badge punch for the current instant and invalidates
// the cached presence data it makes stale.
func (c *Client) Punch(ctx context.Context) (*models.PunchResult, error) {
	if !c.state.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	now := c.clock()

	body := rpc.Punch(c.state.SessionID, c.state.DataEmployeeID(), now)

	msg, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}

	res := parse.PunchResult(msg, now)
	if res == nil {
		return nil, fmt.Errorf("%w: punch response", ErrNoData)
	}

	c.presence.Delete(timeutil.MonthOf(now))

	c.logger.Info("punch recorded",
		slog.Bool("success", res.Success),
		slog.String("type", res.Type.String()),
	)

	return res, nil
}

// IsMonthCached reports whether the absence cache holds the month.
func (c *Client) IsMonthCached(m timeutil.Month) bool {
	_, ok := c.absences.Get(m)

	return ok
}

// CacheRange returns the absence coverage window.
func (c *Client) CacheRange() (start, end timeutil.Month, ok bool) {
	return c.absences.Coverage()
}
