// Package cache provides a process-wide in-memory TTL cache with LRU
// capacity eviction. Entries never survive a process restart; everything
// cached here is re-derivable from provider calls.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds configuration for a Cache.
type Config struct {
	// TTL is how long entries stay valid (default: 10 minutes).
	TTL time.Duration

	// Capacity is the maximum number of entries before least-recently-used
	// eviction kicks in (default: 1024).
	Capacity int
}

// Cache is a TTL + LRU cache keyed by string. Safe for concurrent use;
// concurrent writes to the same key are last-write-wins.
type Cache[V any] struct {
	ttl      time.Duration
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// New creates a new Cache.
func New[V any](cfg Config) *Cache[V] {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1024
	}

	return &Cache[V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if time.Since(ent.insertedAt) > c.ttl {
		c.removeLocked(elem)
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return ent.value, true
}

// Set stores a value under key, replacing any existing entry and evicting
// the least-recently-used entry when over capacity.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.insertedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry[V]{
		key:        key,
		value:      value,
		insertedAt: time.Now(),
	})
	c.entries[key] = elem

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.evictions.Add(1)
	}
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears all entries and counters. Intended for tests.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats contains cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
	}
}

func (c *Cache[V]) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(c.entries, ent.key)
	c.order.Remove(elem)
}
