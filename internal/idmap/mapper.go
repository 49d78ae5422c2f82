// Package idmap implements the deterministic, bidirectional projection
// between Bluesky identifiers (DIDs, AT URIs) and Mastodon-style 64-bit
// Snowflake IDs described in spec.md §3/§4.3.
package idmap

import (
	"context"
	"crypto/sha256"
	"log/slog"

	"github.com/jefflewis/archaeopteryx/internal/cache"
	"github.com/jefflewis/archaeopteryx/internal/snowflake"
)

// HandleResolver resolves a Bluesky handle to a DID, the one upstream
// collaborator the mapper needs (spec.md §4.3: "handle→DID via the
// cache's handle index ... or resolve upstream"). This mirrors an
// identity resolver being injected into a caching wrapper around it.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (did string, err error)
}

// Mapper is the ID Mapper component (C3). It is stateless across
// requests; all state lives in the injected Cache (spec.md §5).
type Mapper struct {
	cache    cache.Cache
	gen      *snowflake.Generator
	resolver HandleResolver
	log      *slog.Logger
}

// New constructs a Mapper. resolver may be nil if handle resolution is not
// needed (SnowflakeForHandle will then return the 0 sentinel for any handle
// not already in the cached handle index).
func New(c cache.Cache, gen *snowflake.Generator, resolver HandleResolver, log *slog.Logger) *Mapper {
	if log == nil {
		log = slog.Default()
	}
	return &Mapper{cache: c, gen: gen, resolver: resolver, log: log}
}

// SnowflakeForDID returns the deterministic Snowflake ID for did. A cache
// hit returns the stored value; a miss computes
// SHA-256(did) truncated to 63 bits as a signed positive integer, so the
// function is pure across restarts (spec.md I3): a cold lookup reproduces
// exactly what a warm one would have returned.
func (m *Mapper) SnowflakeForDID(ctx context.Context, did string) (int64, error) {
	if id, ok, err := cache.Get[int64](ctx, m.cache, cache.DIDToSnowflakeKey(did)); err != nil {
		return 0, err
	} else if ok {
		return id, nil
	}

	id := deterministicID(did)

	// Store both directions. A failure to flush either direction must not
	// fail the caller — the DID→ID function stays pure regardless of
	// whether the cache write below succeeds (spec.md §9, I3).
	if err := m.cache.Set(ctx, cache.DIDToSnowflakeKey(did), id, 0); err != nil {
		m.log.Warn("idmap: failed to cache did->snowflake", "did", did, "error", err)
	}
	if err := m.cache.Set(ctx, cache.SnowflakeToDIDKey(id), did, 0); err != nil {
		m.log.Warn("idmap: failed to cache snowflake->did", "did", did, "error", err)
	}

	return id, nil
}

// deterministicID hashes did with SHA-256 and truncates to 63 bits,
// producing an always-positive int64 (spec.md §4.3).
func deterministicID(did string) int64 {
	sum := sha256.Sum256([]byte(did))
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return int64(v &^ (1 << 63))
}

// SnowflakeForATURI returns the Snowflake ID for aturi. A cache hit
// returns the stored value; a miss pulls a fresh time-ordered ID from the
// Snowflake generator so Mastodon clients that sort statuses by ID never
// see a cold-started fleet member mint an ID smaller than an already-
// observed, newer post (spec.md §4.3 rationale). Stable once observed, not
// pure across restarts (I4).
func (m *Mapper) SnowflakeForATURI(ctx context.Context, aturi string) (int64, error) {
	if id, ok, err := cache.Get[int64](ctx, m.cache, cache.ATURIToSnowflakeKey(aturi)); err != nil {
		return 0, err
	} else if ok {
		return id, nil
	}

	id := m.gen.Generate()

	if err := m.cache.Set(ctx, cache.ATURIToSnowflakeKey(aturi), id, 0); err != nil {
		m.log.Warn("idmap: failed to cache aturi->snowflake", "aturi", aturi, "error", err)
	}
	if err := m.cache.Set(ctx, cache.SnowflakeToATURIKey(id), aturi, 0); err != nil {
		m.log.Warn("idmap: failed to cache snowflake->aturi", "aturi", aturi, "error", err)
	}

	return id, nil
}

// SnowflakeForHandle resolves handle to a DID (via the cached handle
// index, falling back to the injected HandleResolver) and delegates to
// SnowflakeForDID. It returns the 0 sentinel, chosen because a well-formed
// Snowflake is always positive, when the handle cannot be resolved.
func (m *Mapper) SnowflakeForHandle(ctx context.Context, handle string) (int64, error) {
	did, ok, err := cache.Get[string](ctx, m.cache, cache.HandleToDIDKey(handle))
	if err != nil {
		return 0, err
	}
	if !ok {
		if m.resolver == nil {
			return 0, nil
		}
		did, err = m.resolver.ResolveHandle(ctx, handle)
		if err != nil || did == "" {
			return 0, nil
		}
		if cacheErr := m.cache.Set(ctx, cache.HandleToDIDKey(handle), did, 0); cacheErr != nil {
			m.log.Warn("idmap: failed to cache handle->did", "handle", handle, "error", cacheErr)
		}
	}

	return m.SnowflakeForDID(ctx, did)
}

// DIDForSnowflake is a pure cache lookup; it never invents a value.
func (m *Mapper) DIDForSnowflake(ctx context.Context, id int64) (string, bool, error) {
	return cache.Get[string](ctx, m.cache, cache.SnowflakeToDIDKey(id))
}

// ATURIForSnowflake is a pure cache lookup; it never invents a value.
func (m *Mapper) ATURIForSnowflake(ctx context.Context, id int64) (string, bool, error) {
	return cache.Get[string](ctx, m.cache, cache.SnowflakeToATURIKey(id))
}
