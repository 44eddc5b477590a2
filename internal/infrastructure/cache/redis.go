package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pennywise/backend/internal/domain"
)

const redisKeyPrefix = "pennywise:"

// RedisCache is a CacheRepository backed by redis.
// Values are stored as JSON and decoded into generic values on read.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the redis server at url, e.g. redis://localhost:6379/0
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrapf(err, "parse redis url")
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(domain.ErrCacheUnavailable, "ping redis %s: %v", opt.Addr, err)
	}

	return newRedisCache(client), nil
}

func newRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: redisKeyPrefix}
}

// Get retrieves a value from the cache
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, errors.Wrapf(domain.ErrCacheUnavailable, "get %q: %v", key, err)
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, errors.Wrapf(err, "decode cached value %q", key)
	}
	return value, nil
}

// Set stores a value in the cache with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode value %q", key)
	}

	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return errors.Wrapf(domain.ErrCacheUnavailable, "set %q: %v", key, err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return errors.Wrapf(domain.ErrCacheUnavailable, "delete %q: %v", key, err)
	}
	return nil
}

// Exists checks if a key exists in the cache
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, errors.Wrapf(domain.ErrCacheUnavailable, "exists %q: %v", key, err)
	}
	return n > 0, nil
}

// Close closes the redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}
