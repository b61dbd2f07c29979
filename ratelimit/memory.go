package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window [Client]. Expired windows are swept
// from Take at most once per shortest bucket window.
type MemoryLimiter struct {
	mu         sync.Mutex
	buckets    map[string]Bucket
	windows    map[string]*window
	now        func() time.Time
	sweepEvery time.Duration
	nextSweep  time.Time
}

// NewMemoryLimiter creates a [MemoryLimiter].
func NewMemoryLimiter(buckets map[string]Bucket) (*MemoryLimiter, error) {
	cp, err := copyBuckets(buckets)
	if err != nil {
		return nil, err
	}
	var shortest time.Duration
	for _, b := range cp {
		if shortest == 0 || b.Window < shortest {
			shortest = b.Window
		}
	}
	return &MemoryLimiter{
		buckets:    cp,
		windows:    make(map[string]*window),
		now:        time.Now,
		sweepEvery: shortest,
	}, nil
}

// Query implements [Client].
func (l *MemoryLimiter) Query(ctx context.Context, bucket, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	b, ok := l.buckets[bucket]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.live(bucket+":"+key, now)
	if w == nil {
		return queryDecision(b, 0, 0), nil
	}
	return queryDecision(b, w.count, w.resetAt.Sub(now)), nil
}

// Take implements [Client].
func (l *MemoryLimiter) Take(ctx context.Context, bucket, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	b, ok := l.buckets[bucket]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	id := bucket + ":" + key
	w := l.live(id, now)
	if w == nil {
		w = &window{resetAt: now.Add(b.Window)}
		l.windows[id] = w
	}
	w.count++
	return takeDecision(b, w.count, w.resetAt.Sub(now)), nil
}

// Len returns the number of tracked windows, expired ones included until swept.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for id, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, id)
		}
	}
	l.nextSweep = now.Add(l.sweepEvery)
}

func (l *MemoryLimiter) live(id string, now time.Time) *window {
	w, ok := l.windows[id]
	if !ok {
		return nil
	}
	if !now.Before(w.resetAt) {
		delete(l.windows, id)
		return nil
	}
	return w
}
