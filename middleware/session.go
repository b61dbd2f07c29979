package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Session installs a per-request [goSession.Handle] so handlers can read, set and clear
// the session through goSession.HandleFromContext.
func Session(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "session engine not configured", http.StatusInternalServerError)
				return
			}
			if _, ok := goSession.HandleFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			h := engine.NewHandle(w, r)
			next.ServeHTTP(w, r.WithContext(goSession.WithHandle(r.Context(), h)))
		})
	}
}
