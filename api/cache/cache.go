package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the shared cache backend. A nil Store degrades the layered
// cache to memory only, which keeps the API usable without Redis.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Layered fronts the shared store with a small in-memory cache so hot
// list queries don't hit Redis on every request.
type Layered struct {
	mu       sync.RWMutex
	memory   map[string]memoryItem
	store    Store
	memTTL   time.Duration
	storeTTL time.Duration
}

type memoryItem struct {
	payload []byte
	expires time.Time
}

// NewLayered creates a layered cache over the given store.
func NewLayered(store Store, memTTL time.Duration, storeTTL time.Duration) *Layered {
	return &Layered{
		memory:   make(map[string]memoryItem),
		store:    store,
		memTTL:   memTTL,
		storeTTL: storeTTL,
	}
}

// Get returns the cached payload for the key, or nil on a miss. Store
// errors count as misses, the caller just recomputes.
func (c *Layered) Get(ctx context.Context, key string) []byte {
	c.mu.RLock()
	item, exists := c.memory[key]
	c.mu.RUnlock()

	if exists {
		if time.Now().Before(item.expires) {
			return item.payload
		}
		c.mu.Lock()
		delete(c.memory, key)
		c.mu.Unlock()
	}

	if c.store == nil {
		return nil
	}

	value, err := c.store.Get(ctx, key)
	if err != nil || value == "" {
		return nil
	}

	payload := []byte(value)
	c.setMemory(key, payload)
	return payload
}

// Set writes the payload to both layers.
func (c *Layered) Set(ctx context.Context, key string, payload []byte) {
	c.setMemory(key, payload)

	if c.store != nil {
		c.store.Set(ctx, key, string(payload), c.storeTTL)
	}
}

func (c *Layered) setMemory(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory[key] = memoryItem{
		payload: payload,
		expires: time.Now().Add(c.memTTL),
	}
}
