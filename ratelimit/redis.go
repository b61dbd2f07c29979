package ratelimit

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gosession:rl:"

// RedisLimiter is a fixed-window [Client] shared across processes through Redis.
type RedisLimiter struct {
	counter *rate.Counter
	buckets map[string]Bucket
}

// NewRedisLimiter creates a [RedisLimiter]. Every bucket must have a positive size and window.
func NewRedisLimiter(client redis.UniversalClient, buckets map[string]Bucket) (*RedisLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("ratelimit: redis client required")
	}
	cp, err := copyBuckets(buckets)
	if err != nil {
		return nil, err
	}
	return &RedisLimiter{
		counter: rate.NewCounter(client, redisKeyPrefix),
		buckets: cp,
	}, nil
}

// Query implements [Client].
func (l *RedisLimiter) Query(ctx context.Context, bucket, key string) (Decision, error) {
	b, ok := l.buckets[bucket]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	w, err := l.counter.Peek(ctx, bucket, key)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return queryDecision(b, w.Count, w.Reset), nil
}

// Take implements [Client].
func (l *RedisLimiter) Take(ctx context.Context, bucket, key string) (Decision, error) {
	b, ok := l.buckets[bucket]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	w, err := l.counter.Hit(ctx, bucket, key, b.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return takeDecision(b, w.Count, w.Reset), nil
}

func copyBuckets(in map[string]Bucket) (map[string]Bucket, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("ratelimit: at least one bucket required")
	}
	out := make(map[string]Bucket, len(in))
	for name, b := range in {
		if name == "" || !b.valid() {
			return nil, fmt.Errorf("ratelimit: bucket %q needs positive size and window", name)
		}
		out[name] = b
	}
	return out, nil
}
