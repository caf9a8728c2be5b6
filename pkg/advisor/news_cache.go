package advisor

import (
	"context"
	"sync"
	"time"
)

const (
	defaultNewsCacheTTL = 30 * time.Minute
	generalNewsCacheKey = "market_news:general"
)

// NewsCache stores headline lists under a key until their TTL elapses.
type NewsCache interface {
	Get(ctx context.Context, key string) ([]Headline, bool, error)
	Set(ctx context.Context, key string, items []Headline, ttl time.Duration) error
}

type memoryNewsEntry struct {
	items     []Headline
	expiresAt time.Time
}

type memoryNewsCache struct {
	mu      sync.RWMutex
	entries map[string]memoryNewsEntry
	now     func() time.Time
}

// NewMemoryNewsCache returns a process-local cache. now defaults to time.Now.
func NewMemoryNewsCache(now func() time.Time) NewsCache {
	if now == nil {
		now = time.Now
	}
	return &memoryNewsCache{
		entries: make(map[string]memoryNewsEntry),
		now:     now,
	}
}

func (c *memoryNewsCache) Get(_ context.Context, key string) ([]Headline, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	copied := append([]Headline(nil), entry.items...)
	return copied, true, nil
}

func (c *memoryNewsCache) Set(_ context.Context, key string, items []Headline, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryNewsEntry{
		items:     append([]Headline(nil), items...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
