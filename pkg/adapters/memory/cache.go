package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/scribe/pkg/ports"
)

type entry struct {
	value   string
	expires time.Time
}

// Cache implements ports.ResponseCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
	mu   sync.RWMutex
}

// Option configures the Cache.
type Option func(*Cache)

// WithTTL expires entries after ttl. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// NewCache creates an empty in-memory cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value or ports.ErrCacheMiss.
func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return "", ports.ErrCacheMiss
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return "", ports.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value under key.
func (c *Cache) Set(_ context.Context, key, value string) error {
	e := entry{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = e
	return nil
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
