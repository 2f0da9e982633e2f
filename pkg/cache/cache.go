package cache

import (
	"context"
	"sync"
	"time"
)

// CleanupFunc reports whether an entry should be evicted.
type CleanupFunc[K comparable, V any] func(key K, value V) bool

type Cache[K comparable, T any] struct {
	mu              sync.RWMutex
	entries         map[K]T
	cleanupInterval time.Duration
	cleanupFunc     CleanupFunc[K, T]
}

type Option[K comparable, T any] func(*Cache[K, T])

func New[K comparable, T any](opts ...Option[K, T]) *Cache[K, T] {
	c := &Cache[K, T]{
		entries: make(map[K]T),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func WithCleanup[K comparable, T any](interval time.Duration, cleanupFunc CleanupFunc[K, T]) Option[K, T] {
	return func(c *Cache[K, T]) {
		c.cleanupInterval = interval
		c.cleanupFunc = cleanupFunc
	}
}

func (c *Cache[K, T]) Set(key K, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *Cache[K, T]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache[K, T]) Get(key K) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// GetOrSet returns the entry for key, storing the result of create first when
// there is none. create runs under the write lock.
func (c *Cache[K, T]) GetOrSet(key K, create func() T) T {
	if entry, ok := c.Get(key); ok {
		return entry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		return entry
	}
	entry := create()
	c.entries[key] = entry
	return entry
}

func (c *Cache[K, T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[K, T]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Sweep evicts every entry the cleanup func selects.
func (c *Cache[K, T]) Sweep() int {
	if c.cleanupFunc == nil {
		return 0
	}

	var keysToDelete []K
	c.mu.RLock()
	for key, value := range c.entries {
		if c.cleanupFunc(key, value) {
			keysToDelete = append(keysToDelete, key)
		}
	}
	c.mu.RUnlock()

	if len(keysToDelete) == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keysToDelete {
		delete(c.entries, key)
	}
	return len(keysToDelete)
}

// StartCleanup sweeps every cleanup interval until ctx is done.
func (c *Cache[K, T]) StartCleanup(ctx context.Context) {
	if c.cleanupInterval == 0 || c.cleanupFunc == nil {
		return
	}

	ticker := time.NewTicker(c.cleanupInterval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}
