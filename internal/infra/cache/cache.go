// Package cache holds per-customer detail payloads between dashboard
// refreshes, sparing the primary provider a query when an operator
// reopens the same customer within the TTL.
package cache

import (
	"sync"
	"time"
)

// The keyspace is one entry per customer and the upstream listing
// limits already bound it; maxEntries is a hard stop in case they
// don't.
const maxEntries = 4096

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL is a thread-safe expiring cache. Expired entries are dropped
// lazily on access rather than by a background sweeper.
type TTL[T any] struct {
	mu    sync.Mutex
	items map[string]entry[T]
	ttl   time.Duration

	now func() time.Time
}

// New creates a cache whose entries live for ttl after each Set.
func New[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached value. A hit on an expired entry deletes it
// and reports a miss.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the configured TTL. A full cache
// purges expired entries first and then evicts the entry closest to
// expiry to make room.
func (c *TTL[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok && len(c.items) >= maxEntries {
		c.evictLocked()
	}
	c.items[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete removes key, if present.
func (c *TTL[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// evictLocked drops every expired entry, or when nothing has expired,
// the live entry closest to expiry. Linear scan: the map tops out at
// maxEntries and evictions only happen at the cap.
func (c *TTL[T]) evictLocked() {
	now := c.now()
	var (
		soonestKey string
		soonestExp time.Time
		dropped    bool
	)
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
			dropped = true
			continue
		}
		if soonestKey == "" || e.expiresAt.Before(soonestExp) {
			soonestKey, soonestExp = k, e.expiresAt
		}
	}
	if !dropped && soonestKey != "" {
		delete(c.items, soonestKey)
	}
}
