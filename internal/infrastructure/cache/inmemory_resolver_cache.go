package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	id        int
	expiresAt time.Time
}

// InMemoryResolverCache keeps resolved ids in process memory. It is used
// when Redis is not configured.
type InMemoryResolverCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResolverCache creates the cache and starts a goroutine that
// evicts expired entries every cleanupInterval
func NewInMemoryResolverCache(cleanupInterval time.Duration) *InMemoryResolverCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	c := &InMemoryResolverCache{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the cached id for key
func (c *InMemoryResolverCache) Get(_ context.Context, key string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return 0, false, nil
	}
	return e.id, true, nil
}

// Set stores id for key with ttl
func (c *InMemoryResolverCache) Set(_ context.Context, key string, id int, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{id: id, expiresAt: c.now().Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *InMemoryResolverCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryResolverCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *InMemoryResolverCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ping always succeeds
func (c *InMemoryResolverCache) Ping(context.Context) error { return nil }

// Close stops the cleanup goroutine
func (c *InMemoryResolverCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}
