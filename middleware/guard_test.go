package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, mutate func(*goSession.Config), configure ...func(*goSession.Builder)) *goSession.Engine {
	t.Helper()

	cfg := goSession.DefaultConfig()
	cfg.Cookie.Secure = false
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	b := goSession.New().WithConfig(cfg)
	for _, fn := range configure {
		fn(b)
	}
	engine, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func newRouter(engine *goSession.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(Session(engine))

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		h, _ := goSession.HandleFromContext(r.Context())
		if err := h.Set(r.Context(), goSession.Credentials{"user": "alice"}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		h, _ := goSession.HandleFromContext(r.Context())
		if err := h.Clear(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.With(Require(engine, nil)).Get("/private", func(w http.ResponseWriter, r *http.Request) {
		res, _ := AuthResultFromContext(r.Context())
		_, _ = w.Write([]byte(res.Credentials["user"].(string)))
	})
	r.With(Require(engine, goSession.NoRedirect())).Get("/api", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(Require(engine, goSession.RedirectTo("/admin/login"))).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(Try(engine, nil)).Get("/maybe", func(w http.ResponseWriter, r *http.Request) {
		if res, ok := AuthResultFromContext(r.Context()); ok {
			_, _ = w.Write([]byte("hello " + res.Credentials["user"].(string)))
			return
		}
		ae, _ := AuthErrorFromContext(r.Context())
		_, _ = w.Write([]byte("anonymous " + ae.Reason.String()))
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.50:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.MaxAge >= 0 {
			found = c
		}
	}
	require.NotNil(t, found, "expected a session cookie")
	return found
}

func TestRequireLoginFlow(t *testing.T) {
	router := newRouter(newEngine(t, nil))

	rec := do(t, router, http.MethodGet, "/private")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	anon := sessionCookie(t, rec)

	rec = do(t, router, http.MethodPost, "/login", anon)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/private", anon)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = do(t, router, http.MethodPost, "/logout", anon)
	require.Equal(t, http.StatusNoContent, rec.Code)
	fresh := sessionCookie(t, rec)
	assert.NotEqual(t, anon.Value, fresh.Value)

	rec = do(t, router, http.MethodGet, "/private", anon)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRedirectsWithNext(t *testing.T) {
	engine := newEngine(t, func(c *goSession.Config) {
		c.Redirect.To = "http://x/login"
		c.Redirect.AppendNext = "next"
	})
	router := newRouter(engine)

	rec := do(t, router, http.MethodGet, "/private?tab=2")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://x/login?next=%2Fprivate%3Ftab%3D2", rec.Header().Get("Location"))
	assert.Equal(t, goSession.RedirectBody, rec.Body.String())
	assert.Equal(t, uint64(1), engine.MetricsSnapshot().Counters[goSession.MetricRedirect])
}

func TestRouteOverrides(t *testing.T) {
	engine := newEngine(t, func(c *goSession.Config) {
		c.Redirect.To = "/login"
	})
	router := newRouter(engine)

	rec := do(t, router, http.MethodGet, "/api")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))

	rec = do(t, router, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestTryModeContinuesAnonymously(t *testing.T) {
	router := newRouter(newEngine(t, func(c *goSession.Config) {
		c.Redirect.To = "/login"
	}))

	rec := do(t, router, http.MethodGet, "/maybe")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous bad_session", rec.Body.String())
	anon := sessionCookie(t, rec)

	rec = do(t, router, http.MethodGet, "/maybe", anon)
	assert.Equal(t, "anonymous not_authenticated", rec.Body.String())

	do(t, router, http.MethodPost, "/login", anon)
	rec = do(t, router, http.MethodGet, "/maybe", anon)
	assert.Equal(t, "hello alice", rec.Body.String())
}

func TestTryModeEnforcesRateLimit(t *testing.T) {
	limiter, err := ratelimit.NewMemoryLimiter(map[string]ratelimit.Bucket{
		"session": {Size: 1, Window: time.Minute},
	})
	require.NoError(t, err)

	router := newRouter(newEngine(t, nil, func(b *goSession.Builder) {
		b.WithRateLimiter(limiter, nil)
	}))

	rec := do(t, router, http.MethodGet, "/maybe")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/maybe")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestGuardInstallsHandleWithoutSessionMiddleware(t *testing.T) {
	engine := newEngine(t, nil)
	handler := Try(engine, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := goSession.HandleFromContext(r.Context())
		require.True(t, ok)
		_, hasToken := h.ID()
		assert.True(t, hasToken)
		w.WriteHeader(http.StatusOK)
	}))

	rec := do(t, handler, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardNilEngine(t *testing.T) {
	handler := Require(nil, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := do(t, handler, http.MethodGet, "/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareReusesInstalledHandle(t *testing.T) {
	engine := newEngine(t, nil)
	var seen *goSession.Handle
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = goSession.HandleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	pre := engine.NewHandle(rec, req)
	req = req.WithContext(goSession.WithHandle(context.Background(), pre))
	Session(engine)(inner).ServeHTTP(rec, req)

	assert.Same(t, pre, seen)
}
