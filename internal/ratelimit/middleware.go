package ratelimit

import (
	"net/http"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
)

// Middleware picks the authenticated or unauthenticated Limiter by
// whether the request carries a bearer token, applies it, sets the
// X-RateLimit-* headers on every response it admits or rejects, and
// rejects over-limit requests with a Mastodon-shaped 429 (spec.md
// §4.7/§4.8). If the limiter itself fails, it answers 500 without
// X-RateLimit-* headers.
func Middleware(unauth, auth *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, authenticated := KeyFor(r)
			limiter := unauth
			if authenticated {
				limiter = auth
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				apierrors.WriteJSON(w, apierrors.Internal(err))
				return
			}

			result.SetHeaders(w)
			if !result.Allowed {
				apierrors.WriteJSON(w, apierrors.RateLimited())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
