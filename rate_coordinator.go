package goSession

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goSession/ratelimit"
)

// rateCoordinator gates authentication on a limiter: it queries before any store
// access and charges one unit for every failed attempt.
type rateCoordinator struct {
	client ratelimit.Client
	bucket string
	keyFn  KeyFunc
}

func newRateCoordinator(client ratelimit.Client, bucket string, keyFn KeyFunc) *rateCoordinator {
	if client == nil {
		return nil
	}
	if keyFn == nil {
		keyFn = ClientAddress
	}
	return &rateCoordinator{
		client: client,
		bucket: bucket,
		keyFn:  keyFn,
	}
}

func (c *rateCoordinator) key(r *http.Request) string {
	return c.keyFn(r)
}

// checkBeforeAuth never charges the bucket.
func (c *rateCoordinator) checkBeforeAuth(ctx context.Context, key string) (RateLimitDecision, error) {
	return c.client.Query(ctx, c.bucket, key)
}

func (c *rateCoordinator) consumeOnFailure(ctx context.Context, key string) (RateLimitDecision, error) {
	return c.client.Take(ctx, c.bucket, key)
}
