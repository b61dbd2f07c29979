package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

type authResultContextKey struct{}
type authErrorContextKey struct{}

// RouteOptions configures one guarded route.
type RouteOptions struct {
	Mode     goSession.Mode
	Override *goSession.RouteOverride
}

// AuthResultFromContext returns the result of a successful authentication.
func AuthResultFromContext(ctx context.Context) (*goSession.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goSession.AuthResult)
	return res, ok
}

// AuthErrorFromContext returns the rejection that a try-mode route let through.
func AuthErrorFromContext(ctx context.Context) (*goSession.AuthError, bool) {
	ae, ok := ctx.Value(authErrorContextKey{}).(*goSession.AuthError)
	return ae, ok
}

// Guard authenticates every request and applies the engine's policy to failures.
// It installs a session handle itself when [Session] did not run first.
func Guard(engine *goSession.Engine, opts RouteOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			h, ok := goSession.HandleFromContext(r.Context())
			if !ok {
				h = engine.NewHandle(w, r)
				r = r.WithContext(goSession.WithHandle(r.Context(), h))
			}

			res, err := engine.Authenticate(r.Context(), h)
			if err == nil {
				ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ae, _ := goSession.AsAuthError(err)
			decision := engine.Decide(ae, goSession.PolicyRequest{
				Mode: opts.Mode,
				Path: r.URL.RequestURI(),
			}, opts.Override)

			if opts.Mode == goSession.ModeTry &&
				decision.Kind == goSession.DecisionReject &&
				(ae == nil || ae.Reason != goSession.ReasonRateLimited) {
				ctx := r.Context()
				if ae != nil {
					ctx = context.WithValue(ctx, authErrorContextKey{}, ae)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			writeDecision(w, engine, decision)
		})
	}
}

// Require guards a route in required mode.
func Require(engine *goSession.Engine, override *goSession.RouteOverride) func(http.Handler) http.Handler {
	return Guard(engine, RouteOptions{Mode: goSession.ModeRequired, Override: override})
}

// Try guards a route in try mode.
func Try(engine *goSession.Engine, override *goSession.RouteOverride) func(http.Handler) http.Handler {
	return Guard(engine, RouteOptions{Mode: goSession.ModeTry, Override: override})
}

func writeDecision(w http.ResponseWriter, engine *goSession.Engine, d goSession.Decision) {
	for name, values := range d.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	if d.Kind == goSession.DecisionRedirect {
		engine.RecordRedirect()
		w.Header().Set("Location", d.Target)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(d.Status)
		_, _ = w.Write([]byte(goSession.RedirectBody))
		return
	}

	msg := "unauthorized"
	if d.Status == http.StatusTooManyRequests {
		msg = "too many requests"
	}
	http.Error(w, msg, d.Status)
}
