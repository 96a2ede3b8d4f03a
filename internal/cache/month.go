// Package cache holds the session-scoped month caches and the bolt-backed
// snapshot store that persists them between runs.
package cache

import (
	"sort"
	"sync"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// MonthCache maps calendar months to presence records. Entries are never
// evicted; the cache lives and dies with the session.
type MonthCache struct {
	mu     sync.RWMutex
	months map[timeutil.Month]*models.MonthPresence
}

func NewMonthCache() *MonthCache {
	return &MonthCache{
		months: make(map[timeutil.Month]*models.MonthPresence),
	}
}

func (c *MonthCache) Get(m timeutil.Month) (*models.MonthPresence, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.months[m]

	return rec, ok
}

func (c *MonthCache) Put(rec *models.MonthPresence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.months[rec.Month] = rec
}

// Delete drops a cached month, forcing a refetch on the next query.
func (c *MonthCache) Delete(m timeutil.Month) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.months, m)
}

func (c *MonthCache) Has(m timeutil.Month) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.months[m]

	return ok
}

// Months returns the cached month keys in chronological order.
func (c *MonthCache) Months() []timeutil.Month {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]timeutil.Month, 0, len(c.months))
	for m := range c.months {
		keys = append(keys, m)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})

	return keys
}
