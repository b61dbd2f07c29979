// Package internal groups helpers that are private to goSession.
//
// # Sub-packages
//
//   - identity: derives cache keys from client tokens, optionally HMAC-bound to request attributes
//   - rate: Redis fixed-window counter primitive behind ratelimit.RedisLimiter
//   - uid: collision-checked random token generator
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
