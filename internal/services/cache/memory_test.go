package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxBytes int64) *MemoryCache {
	t.Helper()
	mc := newMemoryCache(maxBytes, time.Hour)
	t.Cleanup(mc.Stop)
	return mc
}

func TestMemoryCacheGetSet(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t, 0)

	_, ok := mc.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "a", []byte("one"), time.Minute))
	value, ok := mc.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("one"), value)
	assert.True(t, mc.Has(ctx, "a"))

	require.NoError(t, mc.Set(ctx, "a", []byte("three"), time.Minute))
	value, _ = mc.Get(ctx, "a")
	assert.Equal(t, []byte("three"), value)

	require.NoError(t, mc.Delete(ctx, "a"))
	assert.False(t, mc.Has(ctx, "a"))

	stats := mc.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(0), stats.Size)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t, 0)

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, mc.Set(ctx, "default", []byte("y"), 0))
	time.Sleep(20 * time.Millisecond)

	assert.False(t, mc.Has(ctx, "short"))
	_, ok := mc.Get(ctx, "short")
	assert.False(t, ok)
	assert.True(t, mc.Has(ctx, "default"))
	assert.Equal(t, int64(1), mc.Stats().Evictions)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	// each entry is 1 byte key + 9 bytes value
	mc := newTestCache(t, 30)
	value := []byte(strings.Repeat("v", 9))

	require.NoError(t, mc.Set(ctx, "a", value, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", value, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", value, time.Minute))
	time.Sleep(time.Millisecond)

	_, ok := mc.Get(ctx, "a")
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	require.NoError(t, mc.Set(ctx, "d", value, time.Minute))

	assert.True(t, mc.Has(ctx, "a"))
	assert.False(t, mc.Has(ctx, "b"))
	assert.True(t, mc.Has(ctx, "c"))
	assert.True(t, mc.Has(ctx, "d"))

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, int64(30), stats.Size)
	assert.Equal(t, int64(30), stats.MaxSize)
}

func TestMemoryCacheSkipsOversizedValues(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t, 8)

	require.NoError(t, mc.Set(ctx, "big", []byte(strings.Repeat("x", 64)), time.Minute))
	assert.False(t, mc.Has(ctx, "big"))
	assert.Equal(t, int64(0), mc.Stats().Sets)
}

func TestMemoryCacheClearAndStop(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(1)

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, mc.Clear(ctx))

	assert.Equal(t, 0, mc.Stats().Entries)
	assert.Equal(t, int64(1024*1024), mc.Stats().MaxSize)

	mc.Stop()
	mc.Stop()
}

func TestMemoryCacheSweep(t *testing.T) {
	ctx := context.Background()
	mc := newMemoryCache(0, 5*time.Millisecond)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Millisecond))

	assert.Eventually(t, func() bool {
		return mc.Stats().Entries == 0
	}, time.Second, 5*time.Millisecond)
}
