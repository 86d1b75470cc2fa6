// Package resultcache provides a bounded LRU cache with duplicate-suppressed
// computation. It is a pure performance layer: removing it changes latency,
// never results.
package resultcache

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	key   string
	value V
}

// Cache is a thread-safe LRU cache. Reads promote an entry to
// most-recently-used; inserting beyond capacity evicts the least-recently-used
// entry. A capacity of zero or less disables storage entirely.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List

	group singleflight.Group

	hits   uint64
	misses uint64
}

// New creates a cache bounded to capacity entries.
func New[V any](capacity int) *Cache[V] {
	return &Cache[V]{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key if present, promoting it to
// most-recently-used.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil || c.capacity <= 0 {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.lookup(key)
	if !ok {
		c.misses++
		return zero, false
	}
	c.hits++
	return value, true
}

// lookup is the counter-free core of Get. The caller must hold mu.
func (c *Cache[V]) lookup(key string) (V, bool) {
	var zero V
	element, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	ent, ok := element.Value.(*entry[V])
	if !ok {
		// An inconsistent element degrades to a miss; the slot is dropped so
		// the list and map stay in step.
		c.order.Remove(element)
		delete(c.entries, key)
		return zero, false
	}
	c.order.MoveToFront(element)
	return ent.value, true
}

// Put inserts or updates the value for key, evicting the least-recently-used
// entry once capacity is exceeded.
func (c *Cache[V]) Put(key string, value V) {
	if c == nil || c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		if ent, ok := element.Value.(*entry[V]); ok {
			ent.value = value
			c.order.MoveToFront(element)
			return
		}
		c.order.Remove(element)
		delete(c.entries, key)
	}

	c.entries[key] = c.order.PushFront(&entry[V]{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		if ent, ok := oldest.Value.(*entry[V]); ok {
			delete(c.entries, ent.key)
		}
	}
}

// GetOrCompute returns the cached value or computes and caches it. Concurrent
// callers for the same key share a single computation. The bool reports
// whether the value came from cache.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the key while this caller
		// waited on the flight group. The re-check bypasses the hit and miss
		// counters so a single cold lookup counts exactly one miss.
		c.mu.Lock()
		value, ok := c.lookup(key)
		c.mu.Unlock()
		if ok {
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return value, err
		}
		c.Put(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	value, ok := result.(V)
	if !ok {
		// Shared-flight result of an unexpected shape: recompute directly
		// rather than fail the caller.
		value, err := compute()
		if err != nil {
			var zero V
			return zero, false, err
		}
		c.Put(key, value)
		return value, false, nil
	}
	return value, false, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counters.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
