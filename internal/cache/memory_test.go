package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "w1", widget{Name: "a", Count: 1}, 0))

	var got widget
	ok, err := c.Get(ctx, "w1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, widget{Name: "a", Count: 1}, got)
}

func TestMemoryCacheMissIsNotError(t *testing.T) {
	c := NewMemoryCache()
	var got widget
	ok, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheTypeMismatchIsSilentMiss(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "not-a-widget-struct", 0))

	var got widget
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "a decode failure must be a silent miss, never an error")
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", widget{Name: "x"}, 10*time.Second))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(11 * time.Second)
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire once TTL elapses")
}

func TestMemoryCacheNoTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", widget{Name: "x"}, 0))

	now = now.Add(365 * 24 * time.Hour)
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheDeleteIsIdempotent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Delete(ctx, "never-existed"))

	require.NoError(t, c.Set(ctx, "k", widget{Name: "x"}, 0))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheSweepRemovesExpiredOnly(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "expiring", widget{}, time.Second))
	require.NoError(t, c.Set(ctx, "forever", widget{}, 0))

	now = now.Add(2 * time.Second)
	c.Sweep()

	c.mu.Lock()
	_, hasExpiring := c.entries["expiring"]
	_, hasForever := c.entries["forever"]
	c.mu.Unlock()

	assert.False(t, hasExpiring)
	assert.True(t, hasForever)
}

func TestGetGenericHelper(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", int64(42), 0))

	v, ok, err := Get[int64](ctx, c, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok, err = Get[int64](ctx, c, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
