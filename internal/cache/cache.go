// Package cache provides a typed JSON key/value store with optional TTL,
// backed by either an in-memory map or a Redis-protocol-compatible remote
// store. It is the single persistence substrate C3 (identity mapping) and
// C6 (OAuth) are built against — spec.md's Non-goals exclude any durable
// store beyond this cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Errors surfaced by a Cache implementation. Type-mismatched decodes are
// never an error (spec.md §4.1): Get returns ok=false instead.
var (
	// ErrNotConnected is returned when the remote backend has no live
	// connection.
	ErrNotConnected = errors.New("cache: not connected")
)

// OperationError wraps a backend I/O failure. Callers map this to
// apierrors.Internal.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return "cache: " + e.Op + ": " + e.Err.Error() }
func (e *OperationError) Unwrap() error { return e.Err }

func operationFailed(op string, err error) error {
	return &OperationError{Op: op, Err: err}
}

// Cache is the narrow capability surface every component depends on.
// Values are JSON-encoded on the wire regardless of backend, so the cache
// itself stays type-agnostic (spec.md §4.1).
type Cache interface {
	// Set stores value under key, JSON-encoded. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get decodes the stored value into dest (a pointer). It returns
	// ok=false, nil error when the key is missing, expired, or the stored
	// bytes don't decode into dest's type — a schema change must never
	// turn into a user-visible error (spec.md §4.1, §7).
	Get(ctx context.Context, key string, dest any) (ok bool, err error)

	// Delete removes key. Idempotent: deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}

// Get[T] is a small generic convenience wrapper over Cache.Get, returning
// the zero value and ok=false on miss/type-mismatch.
func Get[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var v T
	ok, err := c.Get(ctx, key, &v)
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return v, true, nil
}

// decodeInto is shared by backends: it JSON-decodes raw bytes into dest
// and treats any decode error as a silent miss per spec.md §4.1.
func decodeInto(raw []byte, dest any) (ok bool, err error) {
	if jsonErr := json.Unmarshal(raw, dest); jsonErr != nil {
		return false, nil
	}
	return true, nil
}

func encodeValue(value any) ([]byte, error) {
	return json.Marshal(value)
}
