package middleware

import (
	"context"
	"errors"
	"net/http"

	otpauth "github.com/quamin-dev/otpauth"
)

type identityContextKey struct{}

// IdentityFromContext returns the [otpauth.Identity] injected by [Guard].
func IdentityFromContext(ctx context.Context) (*otpauth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*otpauth.Identity)
	return id, ok
}

// Guard wraps next with the engine's ordered access checks. A passing request
// carries the caller's [otpauth.Identity] in its context; a failing one is
// rejected with 401 (or 503 when the session store is unreachable).
func Guard(engine *otpauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.Authorize(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, otpauth.ErrStoreUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
