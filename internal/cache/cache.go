package cache

import (
	"context"
	"sync"
	"time"
)

// ProfileCache is a short-TTL read-through cache of rendered public profiles,
// keyed by user id. Misses are cheap; the store stays authoritative.
type ProfileCache interface {
	Get(ctx context.Context, userID string) ([]byte, bool)
	Set(ctx context.Context, userID string, payload []byte)
	Invalidate(ctx context.Context, userID string)
}

// Memory is the in-process fallback used when no Redis is configured.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	payload []byte
	exp     time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) Get(_ context.Context, userID string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, userID)
		c.mu.Unlock()
		return nil, false
	}

	return e.payload, true
}

func (c *Memory) Set(_ context.Context, userID string, payload []byte) {
	c.mu.Lock()
	c.m[userID] = entry{payload: payload, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(_ context.Context, userID string) {
	c.mu.Lock()
	delete(c.m, userID)
	c.mu.Unlock()
}
