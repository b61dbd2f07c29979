package goSession

import (
	"net/http"
	"strconv"
	"strings"
)

// Mode is the authentication mode a route runs under.
type Mode uint8

const (
	// ModeRequired rejects or redirects unauthenticated requests.
	ModeRequired Mode = iota
	// ModeTry lets unauthenticated requests through anonymously.
	ModeTry
)

// String returns the mode label.
func (m Mode) String() string {
	if m == ModeTry {
		return "try"
	}
	return "required"
}

// RouteOverride carries per-route policy settings resolved by the router glue.
// A nil RedirectTo inherits the global target; a pointer to "" disables redirects.
type RouteOverride struct {
	RedirectTo *string
}

// RedirectTo returns an override redirecting the route to uri.
func RedirectTo(uri string) *RouteOverride {
	return &RouteOverride{RedirectTo: &uri}
}

// NoRedirect returns an override that disables redirects for the route.
func NoRedirect() *RouteOverride {
	empty := ""
	return &RouteOverride{RedirectTo: &empty}
}

// PolicyRequest is the part of the request the policy looks at.
type PolicyRequest struct {
	Mode Mode
	// Path is the original request path including its query string.
	Path string
}

// PolicyConfig holds the global redirect settings.
type PolicyConfig struct {
	RedirectTo          string
	AppendNext          string
	RedirectOnTry       bool
	AddRateLimitHeaders bool
}

// DecisionKind is the outcome of [Decide].
type DecisionKind uint8

const (
	// DecisionReject answers with an error status.
	DecisionReject DecisionKind = iota
	// DecisionRedirect sends the client to Target.
	DecisionRedirect
)

// Decision is the response the glue should produce for a failed authentication.
type Decision struct {
	Kind   DecisionKind
	Status int
	Target string
	// Headers are extra response headers (rate-limit annotations).
	Headers http.Header
}

// RedirectBody is the response body of redirect decisions.
const RedirectBody = "You are being redirected..."

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// Decide converts an authentication failure into a reject or redirect decision. It is
// a pure function of its inputs.
func Decide(failure *AuthError, req PolicyRequest, override *RouteOverride, cfg PolicyConfig) Decision {
	if failure == nil {
		failure = newAuthError(ReasonGeneric, nil)
	}

	d := Decision{
		Kind:    DecisionReject,
		Status:  failure.StatusCode(),
		Headers: http.Header{},
	}

	if failure.RateLimit != nil && cfg.AddRateLimitHeaders {
		limit := failure.RateLimit
		d.Headers.Set(headerRateLimitLimit, strconv.FormatInt(limit.Size, 10))
		d.Headers.Set(headerRateLimitRemaining, strconv.FormatInt(limit.Remaining, 10))
		d.Headers.Set(headerRateLimitReset, strconv.FormatInt(limit.TTL.Milliseconds(), 10))
	}

	if !cfg.RedirectOnTry && req.Mode == ModeTry {
		return d
	}

	target := cfg.RedirectTo
	if override != nil && override.RedirectTo != nil {
		target = *override.RedirectTo
	}
	if target == "" {
		return d
	}

	if cfg.AppendNext != "" {
		if strings.Contains(target, "?") {
			target += "&"
		} else {
			target += "?"
		}
		target += cfg.AppendNext + "=" + encodeURIComponent(req.Path)
	}

	d.Kind = DecisionRedirect
	d.Status = http.StatusFound
	d.Target = target
	return d
}

// Decide applies the engine's redirect settings to failure.
func (e *Engine) Decide(failure *AuthError, req PolicyRequest, override *RouteOverride) Decision {
	return Decide(failure, req, override, e.policy)
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
