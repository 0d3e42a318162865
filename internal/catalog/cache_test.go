package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheVersionInitialisesToOne(t *testing.T) {
	cache, _ := newTestCache(t)

	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "catalog", "snapshot", "active")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, "catalog", "snapshot", "active")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestCacheFetchJSONLoadsOnceThenServesCached(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "catalog", "snapshot", "active")
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return Snapshot{Services: []Service{{ID: 1, Name: "Straight Build"}}}, nil
	}

	var first Snapshot
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Len(t, first.Services, 1)

	var second Snapshot
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls, "second fetch must hit the cache")
	assert.Equal(t, first.Services[0].Name, second.Services[0].Name)
}

func TestCacheFetchJSONWithoutClientFallsThrough(t *testing.T) {
	var cache *Cache
	var snap Snapshot
	calls := 0
	err := cache.FetchJSON(context.Background(), "key", &snap, func(context.Context) (any, error) {
		calls++
		return Snapshot{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
