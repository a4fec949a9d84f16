package translate

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache remembers per-viewer translation results so each message is
// translated at most once per viewer. Pass-through results from failed
// translations are cached too; there is no retry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CacheKey identifies one translation attempt.
func CacheKey(viewerID, messageID string) string {
	return "translation:" + viewerID + ":" + messageID
}

const cacheTTL = 24 * time.Hour

// RedisCache backs the translation cache with Redis.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	c.rdb.Set(ctx, key, value, cacheTTL)
}

// MemoryCache is the in-process fallback used when Redis is not
// reachable at startup.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}
