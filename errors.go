package goSession

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/goSession/internal/uid"
	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrInvalidConfiguration is an exported constant or variable used by the session engine.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidSession is an exported constant or variable used by the session engine.
	ErrInvalidSession = session.ErrInvalidSession
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrGenerationExhausted is an exported constant or variable used by the session engine.
	ErrGenerationExhausted = uid.ErrGenerationExhausted
	// ErrBadSession is an exported constant or variable used by the session engine.
	ErrBadSession = errors.New("bad session")
	// ErrNotAuthenticated is an exported constant or variable used by the session engine.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalid is an exported constant or variable used by the session engine.
	ErrInvalid = errors.New("invalid session credentials")
	// ErrRateLimited is an exported constant or variable used by the session engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrAuthenticationFailed is an exported constant or variable used by the session engine.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNoResponseWriter is an exported constant or variable used by the session engine.
	ErrNoResponseWriter = errors.New("handle has no response writer")
)

// FailureReason tags why [Engine.Authenticate] rejected a request.
type FailureReason uint8

const (
	// ReasonGeneric marks an unexpected failure; its cause is logged, never surfaced.
	ReasonGeneric FailureReason = iota
	// ReasonBadSession marks a missing or stale token.
	ReasonBadSession
	// ReasonNotAuthenticated marks an anonymous session.
	ReasonNotAuthenticated
	// ReasonInvalid marks credentials rejected by the validator.
	ReasonInvalid
	// ReasonRateLimited marks a client over its failure budget.
	ReasonRateLimited
)

// String returns the reason label used in logs, metrics and audit events.
func (r FailureReason) String() string {
	switch r {
	case ReasonBadSession:
		return "bad_session"
	case ReasonNotAuthenticated:
		return "not_authenticated"
	case ReasonInvalid:
		return "invalid"
	case ReasonRateLimited:
		return "rate_limited"
	default:
		return "generic"
	}
}

func (r FailureReason) sentinel() error {
	switch r {
	case ReasonBadSession:
		return ErrBadSession
	case ReasonNotAuthenticated:
		return ErrNotAuthenticated
	case ReasonInvalid:
		return ErrInvalid
	case ReasonRateLimited:
		return ErrRateLimited
	default:
		return ErrAuthenticationFailed
	}
}

// AuthError is the rejection returned by [Engine.Authenticate].
//
// Error never includes the underlying cause of a generic failure; use [AuthError.Cause]
// for logging.
type AuthError struct {
	Reason FailureReason
	// RateLimit holds the limiter decision when one was made during the call.
	RateLimit *RateLimitDecision

	cause error
}

func newAuthError(reason FailureReason, cause error) *AuthError {
	return &AuthError{Reason: reason, cause: cause}
}

// Error implements error.
func (e *AuthError) Error() string {
	return e.Reason.sentinel().Error()
}

// Is matches the sentinel of the error's reason.
func (e *AuthError) Is(target error) bool {
	return target == e.Reason.sentinel()
}

// Cause returns the internal error behind a generic failure, if any.
func (e *AuthError) Cause() error {
	return e.cause
}

// StatusCode returns the HTTP status a rejection maps to.
func (e *AuthError) StatusCode() int {
	if e.Reason == ReasonRateLimited {
		return http.StatusTooManyRequests
	}
	return http.StatusUnauthorized
}

// AsAuthError unwraps err into an [AuthError].
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
