package goSession

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/goSession/internal/identity"
)

type clientAddressContextKey struct{}
type handleContextKey struct{}

// WithClientAddress attaches the caller's network address to ctx. It overrides the
// address derived from the request's RemoteAddr for HMAC binding and default rate-limit
// keying, which matters behind trusted proxies.
func WithClientAddress(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddressContextKey{}, addr)
}

// WithHandle attaches a per-request session handle to ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleContextKey{}, h)
}

// HandleFromContext returns the session handle installed by middleware.Session.
func HandleFromContext(ctx context.Context) (*Handle, bool) {
	if ctx == nil {
		return nil, false
	}
	h, ok := ctx.Value(handleContextKey{}).(*Handle)
	return h, ok && h != nil
}

func clientAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	addr, _ := ctx.Value(clientAddressContextKey{}).(string)
	return addr
}

// ClientAddress returns the client address used for binding and rate limiting.
func ClientAddress(r *http.Request) string {
	if r == nil {
		return ""
	}
	if addr := clientAddressFromContext(r.Context()); addr != "" {
		return addr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestAttributes resolves dotted attribute paths against an HTTP request.
type requestAttributes struct {
	r *http.Request
}

func (a requestAttributes) Attribute(path string) (string, bool) {
	if a.r == nil {
		return "", false
	}
	if path == identity.AttrRemoteAddress {
		addr := ClientAddress(a.r)
		return addr, addr != ""
	}
	name, ok := strings.CutPrefix(path, identity.HeaderPrefix)
	if !ok || name == "" {
		return "", false
	}
	values, ok := a.r.Header[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}
