package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v      []byte
	exp    time.Time
	access time.Time
}

// TTLCache is an in-process cache with expiry and least-recently-used
// eviction once maxSize entries are held.
type TTLCache struct {
	mu      sync.Mutex
	m       map[string]*entry
	maxSize int
	now     func() time.Time
}

// NewTTLCache creates a cache holding at most maxSize entries; maxSize <= 0
// means 256.
func NewTTLCache(maxSize int) *TTLCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &TTLCache{m: make(map[string]*entry), maxSize: maxSize, now: time.Now}
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if !e.exp.IsZero() && now.After(e.exp) {
		delete(c.m, key)
		return nil, false, nil
	}
	e.access = now
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.m[key]; !ok && len(c.m) >= c.maxSize {
		c.evict(now)
	}

	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.m[key] = &entry{v: value, exp: exp, access: now}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *TTLCache) Close() error { return nil }

// evict drops expired entries, or the least recently used one if none expired.
func (c *TTLCache) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	expired := false
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
			expired = true
			continue
		}
		if oldestKey == "" || e.access.Before(oldest) {
			oldestKey, oldest = k, e.access
		}
	}
	if !expired && oldestKey != "" {
		delete(c.m, oldestKey)
	}
}
