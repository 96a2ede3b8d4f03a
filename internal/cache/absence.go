package cache

import (
	"sync"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// MinBufferMonths is the slack the absence cache keeps between the month
// being viewed and each edge of its coverage window.
const MinBufferMonths = 2

// Direction names an edge of the coverage window.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}

	return "forward"
}

// Prefetch is a claimed extension of the coverage window. The claim is
// taken before the fetch starts so concurrent extensions in the same
// direction are suppressed; the caller reports the outcome through
// FinishPrefetch.
type Prefetch struct {
	Direction Direction
	From, To  timeutil.Month // inclusive range to fetch
	months    int
}

// AbsenceCache stores per-month absence records and tracks one contiguous
// coverage window across them. The window reflects claimed coverage, not
// stored records: a prefetch moves the boundary up front and rolls it
// back if the fetch fails.
type AbsenceCache struct {
	mu       sync.Mutex
	months   map[timeutil.Month]*models.AbsenceMonth
	start    timeutil.Month
	end      timeutil.Month
	covered  bool
	inflight [2]bool
	buffer   int
}

func NewAbsenceCache(bufferMonths int) *AbsenceCache {
	if bufferMonths <= 0 {
		bufferMonths = MinBufferMonths
	}

	return &AbsenceCache{
		months: make(map[timeutil.Month]*models.AbsenceMonth),
		buffer: bufferMonths,
	}
}

func (c *AbsenceCache) Get(m timeutil.Month) (*models.AbsenceMonth, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.months[m]

	return rec, ok
}

// Store splits a fetched calendar into per-month records and extends the
// coverage window over every month the calendar covers completely.
func (c *AbsenceCache) Store(cal *models.AbsenceCalendar) {
	if cal == nil || len(cal.Days) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	first := timeutil.MonthOf(cal.Start)
	last := timeutil.MonthOf(cal.End)

	for m := first; !last.Before(m); m = m.Add(1) {
		days := cal.MonthSlice(m)
		if days == nil {
			continue
		}

		c.months[m] = &models.AbsenceMonth{
			Month:  m,
			Days:   days,
			Legend: cal.Legend,
		}

		c.extendLocked(m)
	}
}

// Coverage returns the current window boundaries. ok is false until the
// first Store.
func (c *AbsenceCache) Coverage() (start, end timeutil.Month, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.start, c.end, c.covered
}

// Slack returns the months of coverage remaining on each side of m.
// Negative values mean m lies outside the window.
func (c *AbsenceCache) Slack(m timeutil.Month) (backward, forward int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.covered {
		return 0, 0, false
	}

	return m.Sub(c.start), c.end.Sub(m), true
}

// EnsureBuffer claims window extensions so that at least the configured
// buffer of months surrounds m in both directions. It returns the claimed
// prefetches; the caller fetches each range and settles the claim with
// FinishPrefetch. Directions with a prefetch already in flight are left
// alone.
func (c *AbsenceCache) EnsureBuffer(m timeutil.Month) []Prefetch {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.covered {
		return nil
	}

	var claims []Prefetch

	if need := c.buffer - m.Sub(c.start); need > 0 && !c.inflight[Backward] {
		claims = append(claims, c.claimLocked(Backward, need))
	}

	if need := c.buffer - c.end.Sub(m); need > 0 && !c.inflight[Forward] {
		claims = append(claims, c.claimLocked(Forward, need))
	}

	return claims
}

// TryStartPrefetch claims a window extension of the given size. It
// reports false when a prefetch is already in flight for that direction
// or the window is not initialized yet.
func (c *AbsenceCache) TryStartPrefetch(dir Direction, months int) (Prefetch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.covered || months <= 0 || c.inflight[dir] {
		return Prefetch{}, false
	}

	return c.claimLocked(dir, months), true
}

// FinishPrefetch settles a claim. On failure the boundary is rolled back
// by the months that were optimistically claimed.
func (c *AbsenceCache) FinishPrefetch(p Prefetch, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight[p.Direction] = false

	if err == nil {
		return
	}

	if p.Direction == Backward {
		c.start = c.start.Add(p.months)
	} else {
		c.end = c.end.Add(-p.months)
	}
}

func (c *AbsenceCache) claimLocked(dir Direction, months int) Prefetch {
	c.inflight[dir] = true

	var p Prefetch

	if dir == Backward {
		p = Prefetch{
			Direction: Backward,
			From:      c.start.Add(-months),
			To:        c.start.Add(-1),
			months:    months,
		}
		c.start = p.From
	} else {
		p = Prefetch{
			Direction: Forward,
			From:      c.end.Add(1),
			To:        c.end.Add(months),
			months:    months,
		}
		c.end = p.To
	}

	return p
}

func (c *AbsenceCache) extendLocked(m timeutil.Month) {
	if !c.covered {
		c.start, c.end = m, m
		c.covered = true

		return
	}

	// A month disjoint from the window restarts it: bridging the gap
	// would claim coverage for months never fetched. The records of
	// the old window stay in the map.
	if m.Sub(c.end) > 1 || c.start.Sub(m) > 1 {
		c.start, c.end = m, m

		return
	}

	if m.Before(c.start) {
		c.start = m
	}

	if c.end.Before(m) {
		c.end = m
	}
}
