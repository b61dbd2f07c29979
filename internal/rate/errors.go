package rate

import "errors"

// ErrRedisUnavailable wraps Redis failures while reading or updating a window.
var ErrRedisUnavailable = errors.New("redis unavailable")
