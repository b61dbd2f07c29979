package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownBucket is returned when a bucket name has no configured limits.
	ErrUnknownBucket = errors.New("unknown rate limit bucket")
	// ErrLimiterUnavailable wraps backend failures.
	ErrLimiterUnavailable = errors.New("rate limiter unavailable")
)

// Decision is the limiter's view of one key after a query or take.
type Decision struct {
	Conformant bool
	Size       int64
	Remaining  int64
	TTL        time.Duration
}

// Client is the limiter contract. Implementations must be safe for concurrent use.
type Client interface {
	Query(ctx context.Context, bucket, key string) (Decision, error)
	Take(ctx context.Context, bucket, key string) (Decision, error)
}

// Bucket sizes a fixed window.
type Bucket struct {
	Size   int64
	Window time.Duration
}

func (b Bucket) valid() bool {
	return b.Size > 0 && b.Window > 0
}

func queryDecision(b Bucket, count int64, reset time.Duration) Decision {
	return Decision{
		Conformant: count < b.Size,
		Size:       b.Size,
		Remaining:  remaining(b.Size, count),
		TTL:        resetOrWindow(b, count, reset),
	}
}

func takeDecision(b Bucket, count int64, reset time.Duration) Decision {
	return Decision{
		Conformant: count <= b.Size,
		Size:       b.Size,
		Remaining:  remaining(b.Size, count),
		TTL:        resetOrWindow(b, count, reset),
	}
}

func remaining(size, count int64) int64 {
	if count >= size {
		return 0
	}
	return size - count
}

func resetOrWindow(b Bucket, count int64, reset time.Duration) time.Duration {
	if count == 0 || reset <= 0 {
		return b.Window
	}
	return reset
}
