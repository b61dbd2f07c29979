package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is the observed state of one fixed-window counter.
type Window struct {
	Count int64
	// Reset is the time left until the window closes; zero when no window is open.
	Reset time.Duration
}

// Counter reads and increments fixed-window counters in Redis.
type Counter struct {
	redis  redis.UniversalClient
	prefix string
}

// NewCounter creates a [Counter] whose keys start with prefix.
func NewCounter(client redis.UniversalClient, prefix string) *Counter {
	return &Counter{
		redis:  client,
		prefix: prefix,
	}
}

// Peek returns the current window without modifying it.
func (c *Counter) Peek(ctx context.Context, bucket, id string) (Window, error) {
	key := c.key(bucket, id)

	count, err := c.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Window{}, nil
		}
		return Window{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		count = 0
	}

	reset, err := c.ttl(ctx, key)
	if err != nil {
		return Window{}, err
	}
	return Window{Count: count, Reset: reset}, nil
}

// hitScript increments the counter and arms the window expiry in one step, repairing
// keys left without a TTL. It returns the new count and the remaining TTL in ms.
var hitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Hit increments the counter, opening a window of length window on the first hit.
func (c *Counter) Hit(ctx context.Context, bucket, id string, window time.Duration) (Window, error) {
	key := c.key(bucket, id)

	res, err := hitScript.Run(ctx, c.redis, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(res) != 2 {
		return Window{}, fmt.Errorf("%w: unexpected script reply %v", ErrRedisUnavailable, res)
	}
	return Window{Count: res[0], Reset: time.Duration(res[1]) * time.Millisecond}, nil
}

func (c *Counter) ttl(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.redis.PTTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (c *Counter) key(bucket, id string) string {
	return c.prefix + bucket + ":" + id
}
