// Package memory provides an in-process, TTL-aware implementation of
// repository.Cache, used to avoid re-parsing a header for the same path
// within a short window (e.g. repeated `info` calls during a CLI bulk
// scan).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aarant/nescient/internal/repository"
)

type entry struct {
	value    []byte
	expires  time.Time // zero means no expiry
	hasExpiry bool
}

func (e entry) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expires)
}

// Cache is a sharded-free, mutex-guarded map cache with a background
// sweeper that reclaims expired entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewCache creates a Cache with a background sweeper running every second.
func NewCache() *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		stopCh:  make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

// Get returns a copy of the cached value for key, or repository.ErrCacheMiss
// if absent or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, repository.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value under key. A zero ttl means the entry never
// expires on its own.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.hasExpiry = true
		e.expires = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key if present; it is not an error for key to be absent.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Exists reports whether key is present and unexpired.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

// Stop halts the background sweeper. It is safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

var _ repository.Cache = (*Cache)(nil)
