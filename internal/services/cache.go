package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL keeps a lookup long enough for one pass through the wizard
	DefaultCacheTTL = 10 * time.Minute
	MinCacheTTL     = 1 * time.Minute
	MaxCacheTTL     = 1 * time.Hour
)

// CacheService is a JSON cache on Redis. A nil *CacheService is a valid,
// always-missing cache.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheService returns a cache with ttl clamped to [MinCacheTTL, MaxCacheTTL].
// A nil client disables caching.
func NewCacheService(client *redis.Client, ttl time.Duration) *CacheService {
	if client == nil {
		return nil
	}
	return &CacheService{client: client, ttl: clampTTL(ttl)}
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultCacheTTL
	}
	if ttl < MinCacheTTL {
		return MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}

// Get retrieves a value from cache. A miss is (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value with the cache's TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPrefix+key, data, c.ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, CacheKeyPrefix+key).Err()
}

// TTL returns the expiry applied to new entries.
func (c *CacheService) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}
