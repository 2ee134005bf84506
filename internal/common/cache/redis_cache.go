// Package cache provides Redis-based caching for solved optimization
// runs, keyed by instance name and solver configuration so that a
// repeated Solve request against the same inputs skips the ALNS loop.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache wraps a redis.Client with a namespacing prefix and
// JSON (de)serialization for arbitrary cached values.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache instance.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Set stores a value in cache with expiration.
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	fullKey := rc.getFullKey(key)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := rc.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache value: %w", err)
	}

	return nil
}

// Get retrieves a value from cache.
func (rc *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	fullKey := rc.getFullKey(key)

	data, err := rc.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

// Delete removes a value from cache.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	fullKey := rc.getFullKey(key)

	if err := rc.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete cache value: %w", err)
	}

	return nil
}

// Exists checks if a key exists in cache.
func (rc *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	fullKey := rc.getFullKey(key)

	count, err := rc.client.Exists(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache existence: %w", err)
	}

	return count > 0, nil
}

func (rc *RedisCache) getFullKey(key string) string {
	return fmt.Sprintf("%s:%s", rc.prefix, key)
}

// RunKey builds the cache key for a solved run: instance name, seed,
// and iteration budget together identify a reproducible result.
func (rc *RedisCache) RunKey(instanceName string, seed int64, iterations int) string {
	return fmt.Sprintf("run:%s:%d:%d", instanceName, seed, iterations)
}

// Cache expiration constants.
const (
	DefaultExpiration = 15 * time.Minute
	LongExpiration    = 1 * time.Hour
)
