package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Total int64    `json:"total"`
	Names []string `json:"names"`
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	var got snapshot
	assert.ErrorIs(t, c.Get(ctx, "stats", "overview", &got), ErrCacheMiss)

	want := snapshot{Total: 3, Names: []string{"a", "b"}}
	require.NoError(t, c.Set(ctx, "stats", "overview", want, time.Minute))
	require.NoError(t, c.Get(ctx, "stats", "overview", &got))
	assert.Equal(t, want, got)

	require.NoError(t, c.Set(ctx, "stats", "hot", want, time.Minute))
	require.NoError(t, c.Set(ctx, "other", "hot", want, time.Minute))
	require.NoError(t, c.DeletePrefix(ctx, "stats"))

	assert.ErrorIs(t, c.Get(ctx, "stats", "hot", &got), ErrCacheMiss)
	require.NoError(t, c.Get(ctx, "other", "hot", &got))

	require.NoError(t, c.Delete(ctx, "other", "hot"))
	assert.ErrorIs(t, c.Get(ctx, "other", "hot", &got), ErrCacheMiss)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(time.Minute, time.Minute))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p", "k", 1, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "p", "k", &v), ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("INKWELL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INKWELL_TEST_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), addr, "", 15, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)
}

func TestGetOrLoad(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (snapshot, error) {
		calls++
		return snapshot{Total: int64(calls)}, nil
	}

	first, err := GetOrLoad(ctx, c, "stats", "x", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "stats", "x", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = GetOrLoad(ctx, c, "stats", "y", time.Minute, func(context.Context) (snapshot, error) {
		return snapshot{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
