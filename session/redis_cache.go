package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores sessions as encoded blobs in Redis.
type RedisCache struct {
	redis redis.UniversalClient
}

// NewRedisCache creates a [RedisCache] backed by client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{redis: client}
}

// Get implements [Cache].
func (c *RedisCache) Get(ctx context.Context, key string) (*Session, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return Decode(data)
}

// Set implements [Cache].
func (c *RedisCache) Set(ctx context.Context, key string, s *Session, ttl time.Duration) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Drop implements [Cache].
func (c *RedisCache) Drop(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
