package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_Expiry(t *testing.T) {
	cache := NewInMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "acts:snapshot", 42, 60))
	v, ok := cache.Get(ctx, "acts:snapshot")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(61 * time.Second)
	_, ok = cache.Get(ctx, "acts:snapshot")
	assert.False(t, ok)

	assert.Equal(t, 1, cache.Purge())
	assert.Equal(t, 0, cache.Purge())
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 60))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Clear(ctx))
	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)
}

func TestInMemoryCache_CloseStopsCleanup(t *testing.T) {
	cache := NewInMemoryCache(5 * time.Millisecond)
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}
