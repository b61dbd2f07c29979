package goSession_test

import (
	"context"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/MrEthical07/goSession/ratelimit"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	limiter, _ := ratelimit.NewRedisLimiter(rdb, map[string]ratelimit.Bucket{
		"session": {Size: 20, Window: time.Minute},
	})

	cfg := goSession.DefaultConfig()
	cfg.Binding.Secret = "replace-with-a-long-random-secret"
	cfg.Redirect.To = "/login"
	cfg.Redirect.AppendNext = "next"

	engine, _ := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRateLimiter(limiter, nil).
		Build()
	_ = engine
}

// ExampleHandle_Set shows a login handler storing credentials in the session.
func ExampleHandle_Set() {
	login := func(w http.ResponseWriter, r *http.Request) {
		h, _ := goSession.HandleFromContext(r.Context())
		if err := h.Set(r.Context(), goSession.Credentials{"user": "alice"}); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
	_ = login
}

// ExampleEngine_Authenticate shows direct use without the middleware package.
func ExampleEngine_Authenticate() {
	var engine *goSession.Engine
	handler := func(w http.ResponseWriter, r *http.Request) {
		res, err := engine.Authenticate(context.Background(), engine.NewHandle(w, r))
		if err != nil {
			ae, _ := goSession.AsAuthError(err)
			d := engine.Decide(ae, goSession.PolicyRequest{Mode: goSession.ModeRequired, Path: r.URL.RequestURI()}, nil)
			w.WriteHeader(d.Status)
			return
		}
		_ = res.Credentials
	}
	_ = handler
}

// ExampleEngine_Decide wires routes through the middleware package, which applies
// Engine.Decide to every failed authentication.
func ExampleEngine_Decide() {
	var engine *goSession.Engine
	mux := http.NewServeMux()
	private := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	mux.Handle("/account", middleware.Session(engine)(middleware.Require(engine, nil)(private)))
	mux.Handle("/api/me", middleware.Session(engine)(middleware.Require(engine, goSession.NoRedirect())(private)))
	mux.Handle("/", middleware.Session(engine)(middleware.Try(engine, nil)(private)))
}
