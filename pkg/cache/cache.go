package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value cache with per-entry expiration
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// item represents a cached item with expiration
type item struct {
	value      []byte
	expiration int64
}

// expired checks if the cache item has expired
func (i item) expired(now int64) bool {
	return i.expiration > 0 && now > i.expiration
}

// Memory is a thread-safe in-process Cache used when Redis is not configured
type Memory struct {
	items           map[string]item
	mu              sync.RWMutex
	maxItems        int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewMemory creates a memory cache holding at most maxItems entries. A
// positive cleanupInterval starts a sweeper goroutine ended by Close.
func NewMemory(maxItems int, cleanupInterval time.Duration) *Memory {
	c := &Memory{
		items:           make(map[string]item),
		maxItems:        maxItems,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.startCleanupTimer()
	}
	return c
}

// Get retrieves an item from the cache
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || it.expired(time.Now().UnixNano()) {
		return nil, ErrMiss
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

// Set adds an item to the cache; ttl <= 0 never expires
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldest()
	}
	c.items[key] = item{value: stored, expiration: exp}
	return nil
}

// Delete removes an item from the cache
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Ping always succeeds
func (c *Memory) Ping(context.Context) error {
	return nil
}

// Len returns the number of items in the cache (including expired items)
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper goroutine
func (c *Memory) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *Memory) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.deleteExpired()
		}
	}
}

func (c *Memory) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		}
	}
}

// evictOldest removes the entry closest to expiring; entries without an
// expiration are evicted first
func (c *Memory) evictOldest() {
	var oldestKey string
	var oldest int64
	first := true
	for k, v := range c.items {
		if first || v.expiration < oldest {
			oldestKey, oldest, first = k, v.expiration, false
		}
	}
	if !first {
		delete(c.items, oldestKey)
	}
}
