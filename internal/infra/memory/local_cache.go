package memory

import (
	"context"
	"sync"
)

// LocalCache is an in-process implementation of app.LocalCache.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewLocalCache() *LocalCache {
	return &LocalCache{entries: make(map[string]string)}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored keys.
func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
