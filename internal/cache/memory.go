package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter is a process-local Counter for single-instance deployments.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (c *MemoryCounter) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok || (!e.expires.IsZero() && !now.Before(e.expires)) {
		e = &memoryEntry{}
		c.entries[key] = e
		c.sweep(now)
	}
	e.value++
	return e.value, nil
}

func (c *MemoryCounter) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	e.expires = c.now().Add(ttl)
	return true, nil
}

// sweep drops expired keys; called with mu held.
func (c *MemoryCounter) sweep(now time.Time) {
	for k, e := range c.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}
