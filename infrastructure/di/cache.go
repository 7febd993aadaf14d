package di

import (
	"context"
	"sync"
	"time"

	"profnet/application/ports"
)

// InMemoryCache is a TTL cache for query results. When full, Set evicts the
// entry closest to expiry.
type InMemoryCache struct {
	mu         sync.RWMutex
	items      map[string]cacheItem
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

var _ ports.Cache = (*InMemoryCache)(nil)

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache. Call Stop to end its
// cleanup goroutine.
func NewInMemoryCache(maxEntries int) *InMemoryCache {
	cache := newInMemoryCache(maxEntries, time.Now)
	go cache.cleanupExpired(time.Minute)
	return cache
}

func newInMemoryCache(maxEntries int, now func() time.Time) *InMemoryCache {
	return &InMemoryCache{
		items:      make(map[string]cacheItem),
		maxEntries: maxEntries,
		now:        now,
		stop:       make(chan struct{}),
	}
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores a value in cache with TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the cleanup goroutine.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *InMemoryCache) evictOneLocked() {
	var victim string
	var earliest time.Time
	for key, item := range c.items {
		if victim == "" || item.expiresAt.Before(earliest) {
			victim, earliest = key, item.expiresAt
		}
	}
	delete(c.items, victim)
}

func (c *InMemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}
