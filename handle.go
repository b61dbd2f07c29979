package goSession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/MrEthical07/goSession/session"
)

// Handle is the per-request session API given to handlers. A Handle belongs to one
// request and must not be shared across goroutines without external locking.
type Handle struct {
	engine *Engine
	w      http.ResponseWriter
	r      *http.Request

	token    string
	hasToken bool

	internalID string
	resolved   bool
}

// NewHandle binds a session handle to one request/response pair. middleware.Session
// calls it for every request; direct use is for custom framework glue.
func (e *Engine) NewHandle(w http.ResponseWriter, r *http.Request) *Handle {
	h := &Handle{engine: e, w: w, r: r}
	if r != nil {
		h.token, h.hasToken = e.transport.Token(r)
	}
	return h
}

// Request returns the request this handle belongs to.
func (h *Handle) Request() *http.Request {
	return h.r
}

// ID returns the client token carried by, or issued during, this request.
func (h *Handle) ID() (string, bool) {
	return h.token, h.hasToken
}

// InternalID returns the cache key derived from the token. The value is computed
// once per token and reused for the rest of the request.
func (h *Handle) InternalID() (string, bool) {
	if !h.hasToken {
		return "", false
	}
	if !h.resolved {
		h.internalID = h.engine.resolver.Resolve(h.token, requestAttributes{r: h.r})
		h.resolved = true
	}
	return h.internalID, h.internalID != ""
}

// Session loads the current session, returning nil when the request has no token or
// the token has no stored session.
func (h *Handle) Session(ctx context.Context) (*Session, error) {
	id, ok := h.InternalID()
	if !ok {
		return nil, nil
	}
	return h.engine.store.Load(ctx, id)
}

// SetSession describes the setsession operation and its observable behavior.
//
// SetSession stores s under the current internal id. When the request has no token it
// mints one, stores s under the new id, and only then issues the token to the client.
// It returns [ErrInvalidSession] for malformed sessions and [ErrGenerationExhausted]
// when no unique token could be produced.
func (h *Handle) SetSession(ctx context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if id, ok := h.InternalID(); ok {
		if err := h.engine.store.Save(ctx, id, s); err != nil {
			return err
		}
		h.engine.metricInc(MetricSessionSaved)
		return nil
	}

	if h.w == nil {
		return ErrNoResponseWriter
	}

	token, err := h.engine.generator.Generate(ctx)
	if err != nil {
		return err
	}
	id := h.engine.resolver.Resolve(token, requestAttributes{r: h.r})
	if err := h.engine.store.Save(ctx, id, s); err != nil {
		return err
	}
	if err := h.engine.transport.SetToken(h.w, h.r, token); err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}

	h.token, h.hasToken = token, true
	h.internalID, h.resolved = id, true

	h.engine.metricInc(MetricSessionMinted)
	h.engine.metricInc(MetricSessionSaved)
	h.engine.emitAudit(ctx, h.r, auditEventMinted, true, "")
	return nil
}

// Set stores credentials as the session. nil logs the client out (an anonymous session);
// maps and structs log it in. Any other value returns [ErrInvalidCredentials].
func (h *Handle) Set(ctx context.Context, credentials any) error {
	creds, err := normalizeCredentials(credentials)
	if err != nil {
		return err
	}
	return h.SetSession(ctx, &Session{
		Authenticated: creds != nil,
		Credentials:   creds,
	})
}

// Clear drops the client token and the stored session, then issues a fresh anonymous
// token so the client always leaves with a valid one. The re-arm runs even when the
// removal fails; all failures are joined into the returned error. With the cookie
// transport the response carries an expiring Set-Cookie followed by the new one; the
// later header wins.
func (h *Handle) Clear(ctx context.Context) error {
	var errs []error
	if err := h.drop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := h.SetSession(ctx, session.Anonymous()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (h *Handle) drop(ctx context.Context) error {
	if !h.hasToken {
		return nil
	}
	id, hasID := h.InternalID()

	var errs []error
	if h.w != nil {
		if err := h.engine.transport.ClearToken(h.w, h.r); err != nil {
			errs = append(errs, fmt.Errorf("clear session token: %w", err))
		}
	}
	h.token, h.hasToken = "", false
	h.internalID, h.resolved = "", false

	if hasID {
		if err := h.engine.store.Remove(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	h.engine.metricInc(MetricSessionCleared)
	h.engine.emitAudit(ctx, h.r, auditEventCleared, len(errs) == 0, "")
	return errors.Join(errs...)
}

func normalizeCredentials(v any) (Credentials, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case Credentials:
		return c, nil
	case map[string]any:
		return Credentials(c), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return nil, ErrInvalidCredentials
		}
	default:
		return nil, ErrInvalidCredentials
	}

	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	creds := Credentials{}
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return creds, nil
}
