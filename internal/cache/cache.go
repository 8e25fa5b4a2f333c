package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process TTL map. Expired entries are dropped lazily on
// read and in bulk by Sweep.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry
}

type entry struct {
	val any
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	c.SetWithTTL(key, val, c.ttl)
}

func (c *Cache) SetWithTTL(key string, val any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
