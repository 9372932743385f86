package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"RiskSentinel/internal/model"
)

// ErrCacheMiss is returned by Cache.Get when no fresh entry exists.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores fetched series keyed by CacheKey. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*model.PriceSeries, error)
	Set(ctx context.Context, key string, s *model.PriceSeries) error
	Invalidate(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}

// CacheKey identifies a series by symbol and requested history length.
func CacheKey(symbol string, days int) string {
	return fmt.Sprintf("%s:%d", strings.ToUpper(symbol), days)
}

type memoryEntry struct {
	series    *model.PriceSeries
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache creates a cache whose entries live for ttl. now may be nil.
func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{ttl: ttl, now: now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*model.PriceSeries, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}
	return e.series, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, s *model.PriceSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{series: s, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
