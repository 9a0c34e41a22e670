// Package cache provides a read-through cache for catalog records with
// in-memory and Redis backends.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores serialized values under string keys.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// entry is a single cached value with its expiry.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an LRU cache with optional TTL.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List // front = most recently used
}

// NewMemoryCache creates an in-memory cache. size <= 0 means unbounded,
// ttl 0 means no expiry.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxSize: size,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.ttl > 0 && time.Now().After(ent.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return ent.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return nil
	}

	ent := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = c.order.PushFront(ent)

	if c.maxSize > 0 && c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}

	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
	return nil
}

// Close is a no-op for the memory cache.
func (c *MemoryCache) Close() error {
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
