// Package cache implements a keyed cache with a staleness window and
// stale-response suppression.
//
// Fetches are tagged with a sequence number from Begin. Commit only stores a
// value when no newer fetch was begun, and no invalidation happened, since the
// fetch was tagged. A slow response can then never overwrite a fresher one.
package cache

import (
	"sync"
	"time"

	"github.com/dense-analysis/nexus/internal/metrics"
)

// Entry is a cached value with the time it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
	// seq is the sequence number of the fetch that stored the entry.
	seq uint64
}

type Cache[T any] struct {
	name   string
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]Entry[T]
	issued  map[string]uint64
}

// New creates a cache whose entries stay fresh for window.
//
// The name labels the cache in metrics.
func New[T any](name string, window time.Duration) *Cache[T] {
	return &Cache[T]{
		name:    name,
		window:  window,
		now:     time.Now,
		entries: make(map[string]Entry[T]),
		issued:  make(map[string]uint64),
	}
}

// SetClock replaces the time source, for tests.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// Get returns the value for key if it is younger than the window.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]

	if !ok || c.now().Sub(entry.FetchedAt) >= c.window {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()

		var zero T

		return zero, false
	}

	metrics.CacheHits.WithLabelValues(c.name).Inc()

	return entry.Value, true
}

// Newer returns the value for key if it was stored by a fetch begun after
// seq. A fetch that lost the race in Commit uses it to return the result
// that won.
func (c *Cache[T]) Newer(key string, seq uint64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]

	if !ok || entry.seq <= seq {
		var zero T

		return zero, false
	}

	return entry.Value, true
}

// Begin issues a sequence number for a new fetch of key.
func (c *Cache[T]) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued[key]++

	return c.issued[key]
}

// Commit stores value for key if seq is still the latest issued number.
//
// It reports if the value was stored.
func (c *Cache[T]) Commit(key string, seq uint64, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.issued[key] {
		metrics.StaleDiscards.WithLabelValues(c.name).Inc()

		return false
	}

	c.entries[key] = Entry[T]{Value: value, FetchedAt: c.now(), seq: seq}

	return true
}

// Invalidate drops the entry for key.
//
// Fetches begun before the call can no longer commit.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.issued[key]++
}
