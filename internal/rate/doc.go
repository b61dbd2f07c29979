// Package rate provides the Redis fixed-window counter primitive behind the public
// ratelimit.RedisLimiter.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional PEXPIRE on first hit. Reads never create
// or extend a window.
//
// # What this package must NOT do
//
//   - Decide conformance (that lives in ratelimit).
//   - Be imported outside the goSession module.
package rate
