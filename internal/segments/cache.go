package segments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/redis/go-redis/v9"
)

// CacheEntry is the cached synthetic breakdown of one entity on one platform.
// Fingerprint identifies the counters the breakdown was generated from.
type CacheEntry struct {
	Fingerprint string                                      `json:"fingerprint"`
	Segments    map[models.Dimension][]models.SegmentRecord `json:"segments"`
}

// Cache stores synthetic breakdowns keyed by entity and platform.
type Cache interface {
	// Get returns nil without error on a miss.
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
}

// CacheKey builds the cache key for an entity on a platform.
func CacheKey(entityID string, p models.Platform) string {
	return fmt.Sprintf("segments:%s:%s", entityID, p)
}

// Fingerprint summarizes the counters synthetic generation reads. Any change
// to them yields a different fingerprint.
func Fingerprint(m models.EntityMetrics) string {
	return fmt.Sprintf("%d|%d|%g|%d|%g", m.Impressions, m.Clicks, m.Spend, m.Conversions, m.Revenue())
}

// MemoryCache is an in-process Cache with a fixed TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryItem
	now     func() time.Time
}

type memoryItem struct {
	entry     *CacheEntry
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache. A non-positive ttl keeps
// entries until they are overwritten.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryItem),
		now:     time.Now,
	}
}

// Get returns the entry for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && c.now().After(item.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(item.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return item.entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	item := memoryItem{entry: entry}
	if c.ttl > 0 {
		item.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = item
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache stores entries as JSON in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache. Keys are stored under prefix.
func NewRedisCache(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// Get loads and decodes the entry for key.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// Set encodes entry and stores it with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
