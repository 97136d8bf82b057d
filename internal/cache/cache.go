package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe key-value store with per-item expiry. A background
// goroutine sweeps expired items every cleanupInterval until Stop is called.
//
//	users := cache.New[models.User](30*time.Second, time.Minute)
//	if u, ok := users.Get(uid); ok {
//		return u
//	}
//	gen := users.Generation(uid)
//	u := load(uid)
//	users.SetIfGeneration(uid, u, gen)
type Cache[V any] struct {
	mu                sync.RWMutex
	items             map[string]item[V]
	gens              map[string]uint64
	defaultExpiration time.Duration
	now               func() time.Time

	hits   uint64
	misses uint64

	stop     chan struct{}
	stopOnce sync.Once
}

type item[V any] struct {
	value      V
	expiration int64 // unix nanos, 0 means never
}

func (it item[V]) expired(now int64) bool {
	return it.expiration > 0 && now > it.expiration
}

// New creates a cache whose items live for defaultExpiration. A zero
// defaultExpiration keeps items until deleted.
func New[V any](defaultExpiration, cleanupInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:             make(map[string]item[V]),
		gens:              make(map[string]uint64),
		defaultExpiration: defaultExpiration,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.sweep(cleanupInterval)
	}
	return c
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	if found && !it.expired(c.now().UnixNano()) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return it.value, true
	}

	c.mu.Lock()
	c.misses++
	// the key may have been refreshed since the read above
	if cur, ok := c.items[key]; ok && cur.expired(c.now().UnixNano()) {
		delete(c.items, key)
	}
	c.mu.Unlock()

	var zero V
	return zero, false
}

// Generation returns the invalidation counter of key. Pair it with
// SetIfGeneration to fill the cache from a read that may race a Delete.
func (c *Cache[V]) Generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key]
}

// SetIfGeneration stores value only if key was not deleted since gen was
// taken, and reports whether it did.
func (c *Cache[V]) SetIfGeneration(key string, value V, gen uint64) bool {
	var expiration int64
	if c.defaultExpiration > 0 {
		expiration = c.now().Add(c.defaultExpiration).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false
	}
	c.items[key] = item[V]{value: value, expiration: expiration}
	return true
}

// Delete drops key and invalidates reads of it still in flight.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.gens[key]++
	c.mu.Unlock()
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	TotalItems   int    `json:"total_items"`
	ValidItems   int    `json:"valid_items"`
	ExpiredItems int    `json:"expired_items"`
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
}

func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalItems: len(c.items), Hits: c.hits, Misses: c.misses}
	now := c.now().UnixNano()
	for _, it := range c.items {
		if it.expired(now) {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}
	return stats
}

func (c *Cache[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
		}
	}
}

// Stop ends the sweeper. Safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
