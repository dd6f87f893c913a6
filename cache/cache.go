// Package cache provides the TTL memoization used by the query layer.
// Every distinct (function, argument) combination maps to one key; Clear
// drops all entries at once, matching the dashboard's refresh button.
package cache

import (
	"sync"
	"time"

	"github.com/vitorbr/olist-analytics/utils"
	"github.com/vitorbr/olist-analytics/warehouse"
)

type entry struct {
	table  *warehouse.Table
	expiry time.Time
}

type Cache struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
	clock utils.TimeProvider
}

// New creates a cache with the given TTL. A nil clock defaults to system
// time; tests inject a fake TimeProvider to step past expiry.
func New(ttl time.Duration, clock utils.TimeProvider) *Cache {
	if clock == nil {
		clock = utils.RealTimeProvider{}
	}
	return &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the cached table for key, or false if absent or expired.
func (c *Cache) Get(key string) (*warehouse.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiry) {
		delete(c.items, key)
		return nil, false
	}
	return e.table, true
}

// Set stores a table under key with the cache's TTL.
func (c *Cache) Set(key string, table *warehouse.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		table:  table,
		expiry: c.clock.Now().Add(c.ttl),
	}
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}

// Len returns the number of cached entries, counting expired ones that have
// not been read since expiry.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
