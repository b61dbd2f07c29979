package goSession

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goSession/ratelimit"
	"github.com/MrEthical07/goSession/session"
)

// Session is the stored authentication state of one client.
type Session = session.Session

// Credentials is the opaque, object-shaped payload of an authenticated session.
type Credentials = session.Credentials

// RateLimitDecision is the limiter's verdict attached to rejections.
type RateLimitDecision = ratelimit.Decision

// AuthResult is returned by [Engine.Authenticate] on success.
type AuthResult struct {
	// Credentials are the effective credentials, possibly replaced by the validator.
	Credentials Credentials
	// Artifacts is the stored session the credentials were read from.
	Artifacts *Session
}

// Transport reads and writes the session token on the wire.
type Transport interface {
	Token(r *http.Request) (string, bool)
	SetToken(w http.ResponseWriter, r *http.Request, token string) error
	ClearToken(w http.ResponseWriter, r *http.Request) error
}

// Validator re-checks the credentials of an authenticated session on every request.
// Returning ok=false (or an error) rejects the request as invalid. A non-nil
// replacement becomes the effective credentials for this request only.
type Validator func(ctx context.Context, r *http.Request, creds Credentials) (ok bool, replacement Credentials, err error)

// KeyFunc derives the rate-limit key of a request.
type KeyFunc func(r *http.Request) string
