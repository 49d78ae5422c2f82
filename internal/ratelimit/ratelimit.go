// Package ratelimit implements C7, a cache-backed token bucket. It
// generalizes an in-memory, single-global-window limiter into a
// cache.Cache-backed
// bucket so rate limit state survives a process restart and is shared
// across fleet members, per spec.md §4.7.
package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jefflewis/archaeopteryx/internal/cache"
)

// Defaults per spec.md §4.7.
const (
	DefaultUnauthLimit  = 300
	DefaultAuthLimit    = 1000
	DefaultWindow       = 5 * time.Minute
	tokenPrefixLen      = 16
)

type bucketState struct {
	Tokens     int       `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

// Limiter is one token bucket configuration (limit + window) backed by a
// shared cache.
type Limiter struct {
	cache  cache.Cache
	limit  int
	window time.Duration
	now    func() time.Time
}

// New builds a Limiter with the given limit and window.
func New(c cache.Cache, limit int, window time.Duration) *Limiter {
	return &Limiter{cache: c, limit: limit, window: window, now: time.Now}
}

// Result is the outcome of one Allow call, carrying everything needed to
// set the X-RateLimit-* response headers.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     int64 // Unix seconds
}

// SetHeaders writes the X-RateLimit-Limit/Remaining/Reset headers
// spec.md §4.7 requires onto w.
func (res Result) SetHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))
}

// Allow applies the token-bucket algorithm to key (spec.md §4.7): fetch
// {tokens, last_refill}; initialize on a cold key; otherwise refill by
// elapsed time at limit/window_seconds tokens per second, capped at
// limit; consume one token if any remain. The bucket is always
// persisted with TTL = window, whether or not the request is allowed.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()

	state, ok, err := cache.Get[bucketState](ctx, l.cache, key)
	if err != nil {
		return Result{}, err
	}

	var allowed bool
	if !ok {
		state = bucketState{Tokens: l.limit - 1, LastRefill: now}
		allowed = true
	} else {
		elapsed := now.Sub(state.LastRefill).Seconds()
		refillRate := float64(l.limit) / l.window.Seconds()
		refilled := state.Tokens + int(math.Floor(elapsed*refillRate))
		if refilled > l.limit {
			refilled = l.limit
		}
		if refilled > 0 {
			allowed = true
			refilled--
		}
		state.Tokens = refilled
	}
	state.LastRefill = now

	if err := l.cache.Set(ctx, key, state, l.window); err != nil {
		return Result{}, err
	}

	return Result{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: state.Tokens,
		Reset:     now.Add(l.window).Unix(),
	}, nil
}

// KeyFor resolves the token-bucket key for r, per spec.md §4.7: bearer
// token prefix when the request carries one, else resolved client IP.
// The second return reports whether the request was bearer-authenticated
// (callers use this to pick between the auth and unauth Limiter).
func KeyFor(r *http.Request) (key string, authenticated bool) {
	if token, ok := bearerToken(r); ok {
		prefix := token
		if len(prefix) > tokenPrefixLen {
			prefix = prefix[:tokenPrefixLen]
		}
		return cache.RateLimitUserKey(prefix), true
	}
	return cache.RateLimitIPKey(ClientIP(r)), false
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// ClientIP resolves the request's client IP, preferring the first entry
// of X-Forwarded-For, then X-Real-IP, then "unknown" (spec.md §4.7) —
// falling back to "unknown" instead of r.RemoteAddr when neither header
// is present.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}
