package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backend over a Redis-protocol-compatible store
// (Valkey or Redis). set-with-TTL uses SETEX, exists uses EXISTS, and the
// clear operation is scoped to the configured database only (spec.md
// §4.1) — never FLUSHALL.
type RedisCache struct {
	client *redis.Client
}

// RedisConfig mirrors the VALKEY_* environment variables of spec.md §6.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Database int
}

// NewRedisCache dials a redis.Client against cfg. The connection itself is
// lazy (go-redis connects on first command); callers should Ping during
// startup to fail fast, matching spec.md §5's "started before the HTTP
// surface accepts traffic" lifecycle rule.
func NewRedisCache(cfg RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr(cfg),
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	return &RedisCache{client: client}
}

func addr(cfg RedisConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return host + ":" + strconv.Itoa(port)
}

// Ping verifies connectivity, surfacing ErrNotConnected on failure per
// spec.md §4.1.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return ErrNotConnected
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := encodeValue(value)
	if err != nil {
		return operationFailed("set", err)
	}

	// go-redis's Set with ttl<=0 means "no expiry", matching SET without
	// EX; ttl>0 is equivalent to SETEX.
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return translateErr("set", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, translateErr("get", err)
	}
	return decodeInto(raw, dest)
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return translateErr("delete", err)
	}
	return nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, translateErr("exists", err)
	}
	return n > 0, nil
}

// Flush clears only the configured database (FLUSHDB), never every
// database on the server (spec.md §4.1).
func (c *RedisCache) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return translateErr("flush", err)
	}
	return nil
}

func translateErr(op string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrNotConnected
	}
	return operationFailed(op, err)
}
