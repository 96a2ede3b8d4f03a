package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/cache"
	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// calendarFor builds a fully covered calendar from the first day of from
// to the last day of to.
func calendarFor(from, to timeutil.Month) *models.AbsenceCalendar {
	cal := &models.AbsenceCalendar{
		Start: from.First(),
		End:   to.Last(),
	}

	for d := cal.Start; !d.After(cal.End); d = d.AddDate(0, 0, 1) {
		cal.Days = append(cal.Days, models.AbsenceDay{Date: d})
	}

	return cal
}

func month(y int, m time.Month) timeutil.Month {
	return timeutil.Month{Year: y, Month: m}
}

func TestAbsenceCacheStoreAndCoverage(t *testing.T) {
	c := cache.NewAbsenceCache(2)

	_, _, ok := c.Coverage()
	assert.False(t, ok)

	c.Store(calendarFor(month(2025, time.January), month(2025, time.June)))

	start, end, ok := c.Coverage()
	require.True(t, ok)
	assert.Equal(t, month(2025, time.January), start)
	assert.Equal(t, month(2025, time.June), end)

	rec, ok := c.Get(month(2025, time.March))
	require.True(t, ok)
	assert.Len(t, rec.Days, 31)
}

// A calendar that covers a month only partially must not produce a
// record for that month.
func TestAbsenceCachePartialMonthSkipped(t *testing.T) {
	c := cache.NewAbsenceCache(2)

	cal := calendarFor(month(2025, time.January), month(2025, time.February))
	cal.Days = cal.Days[:40] // February cut short

	c.Store(cal)

	_, ok := c.Get(month(2025, time.January))
	assert.True(t, ok)

	_, ok = c.Get(month(2025, time.February))
	assert.False(t, ok)
}

// Storing a range disjoint from the window must restart it, not
// stretch it across months that were never fetched.
func TestStoreDisjointRangeRestartsWindow(t *testing.T) {
	c := cache.NewAbsenceCache(2)

	c.Store(calendarFor(month(2025, time.January), month(2025, time.March)))
	c.Store(calendarFor(month(2025, time.October), month(2025, time.December)))

	start, end, ok := c.Coverage()
	require.True(t, ok)
	assert.Equal(t, month(2025, time.October), start)
	assert.Equal(t, month(2025, time.December), end)

	// The old window's records stay retrievable.
	_, ok = c.Get(month(2025, time.February))
	assert.True(t, ok)

	// An adjacent range still extends instead of restarting.
	c.Store(calendarFor(month(2026, time.January), month(2026, time.February)))

	start, end, _ = c.Coverage()
	assert.Equal(t, month(2025, time.October), start)
	assert.Equal(t, month(2026, time.February), end)
}

func TestEnsureBufferInvariant(t *testing.T) {
	c := cache.NewAbsenceCache(cache.MinBufferMonths)
	c.Store(calendarFor(month(2025, time.January), month(2025, time.December)))

	// Viewing near the forward edge claims a forward extension.
	claims := c.EnsureBuffer(month(2025, time.November))
	require.Len(t, claims, 1)
	assert.Equal(t, cache.Forward, claims[0].Direction)
	assert.Equal(t, month(2026, time.January), claims[0].From)

	backward, forward, ok := c.Slack(month(2025, time.November))
	require.True(t, ok)
	assert.GreaterOrEqual(t, backward, cache.MinBufferMonths)
	assert.GreaterOrEqual(t, forward, cache.MinBufferMonths)

	// Comfortably inside the window: nothing to claim.
	assert.Empty(t, c.EnsureBuffer(month(2025, time.June)))
}

func TestEnsureBufferBothDirections(t *testing.T) {
	c := cache.NewAbsenceCache(2)
	c.Store(calendarFor(month(2025, time.June), month(2025, time.July)))

	claims := c.EnsureBuffer(month(2025, time.June))
	require.Len(t, claims, 2)

	backward, forward, ok := c.Slack(month(2025, time.June))
	require.True(t, ok)
	assert.GreaterOrEqual(t, backward, 2)
	assert.GreaterOrEqual(t, forward, 2)
}

func TestDuplicatePrefetchSuppressed(t *testing.T) {
	c := cache.NewAbsenceCache(2)
	c.Store(calendarFor(month(2025, time.June), month(2025, time.June)))

	first, ok := c.TryStartPrefetch(cache.Forward, 3)
	require.True(t, ok)
	assert.Equal(t, month(2025, time.July), first.From)
	assert.Equal(t, month(2025, time.September), first.To)

	_, ok = c.TryStartPrefetch(cache.Forward, 3)
	assert.False(t, ok, "second forward claim while one is in flight")

	// The opposite direction is independent.
	back, ok := c.TryStartPrefetch(cache.Backward, 2)
	require.True(t, ok)
	assert.Equal(t, month(2025, time.April), back.From)

	c.FinishPrefetch(first, nil)

	_, ok = c.TryStartPrefetch(cache.Forward, 1)
	assert.True(t, ok, "claim after the previous one settled")
}

func TestPrefetchRollbackOnFailure(t *testing.T) {
	c := cache.NewAbsenceCache(2)
	c.Store(calendarFor(month(2025, time.June), month(2025, time.June)))

	p, ok := c.TryStartPrefetch(cache.Forward, 4)
	require.True(t, ok)

	_, end, _ := c.Coverage()
	assert.Equal(t, month(2025, time.October), end, "boundary claimed up front")

	c.FinishPrefetch(p, errors.New("fetch failed"))

	start, end, _ := c.Coverage()
	assert.Equal(t, month(2025, time.June), start)
	assert.Equal(t, month(2025, time.June), end, "boundary rolled back")
}

func TestMonthCacheOrder(t *testing.T) {
	c := cache.NewMonthCache()

	for _, m := range []timeutil.Month{
		month(2025, time.September),
		month(2025, time.February),
		month(2024, time.December),
	} {
		c.Put(&models.MonthPresence{Month: m})
	}

	assert.Equal(t, []timeutil.Month{
		month(2024, time.December),
		month(2025, time.February),
		month(2025, time.September),
	}, c.Months())

	assert.True(t, c.Has(month(2025, time.February)))
	assert.False(t, c.Has(month(2025, time.March)))
}
