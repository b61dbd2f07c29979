package transport

import (
	"errors"
	"net/http"
	"strings"

	sessionjwt "github.com/MrEthical07/goSession/jwt"
)

// DefaultResponseHeader carries freshly issued envelopes back to the client.
const DefaultResponseHeader = "X-Session-Token"

// HeaderOption customizes a [Header] transport.
type HeaderOption func(*Header)

// WithResponseHeader changes the response header used to emit envelopes.
func WithResponseHeader(name string) HeaderOption {
	return func(h *Header) {
		if name != "" {
			h.responseHeader = http.CanonicalHeaderKey(name)
		}
	}
}

// Header carries the token as a signed JWT in the Authorization header.
type Header struct {
	manager        *sessionjwt.Manager
	responseHeader string
}

// NewHeader creates a [Header] transport signing envelopes with manager.
func NewHeader(manager *sessionjwt.Manager, opts ...HeaderOption) (*Header, error) {
	if manager == nil {
		return nil, errors.New("transport: jwt manager required")
	}
	h := &Header{
		manager:        manager,
		responseHeader: DefaultResponseHeader,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Token returns the session token from a valid bearer envelope. Invalid envelopes
// read as no token.
func (h *Header) Token(r *http.Request) (string, bool) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", false
	}
	sid, err := h.manager.Parse(raw)
	if err != nil {
		return "", false
	}
	return sid, true
}

// SetToken signs token and writes it to the response header.
func (h *Header) SetToken(w http.ResponseWriter, _ *http.Request, token string) error {
	signed, err := h.manager.Sign(token)
	if err != nil {
		return err
	}
	w.Header().Set(h.responseHeader, signed)
	return nil
}

// ClearToken removes any envelope issued earlier in this response.
func (h *Header) ClearToken(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Del(h.responseHeader)
	return nil
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
