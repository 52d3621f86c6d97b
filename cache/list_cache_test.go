package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/cache"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func setupCache(t *testing.T) (*cache.RedisListCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisListCache(client, "test:list", time.Minute), mr
}

func TestRedisListCache_RoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	var got page
	hit, err := c.Get(ctx, gen, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, gen, "k", page{Items: []string{"a"}, Total: 1}))

	hit, err = c.Get(ctx, gen, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, page{Items: []string{"a"}, Total: 1}, got)
}

func TestRedisListCache_InvalidateOrphansEntries(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "k", page{Total: 1}))
	require.NoError(t, c.Invalidate(ctx))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	var got page
	hit, err := c.Get(ctx, gen, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_FillAfterInvalidateStaysStale(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	readGen, err := c.Generation(ctx)
	require.NoError(t, err)
	hit, err := c.Get(ctx, readGen, "k", &page{})
	require.NoError(t, err)
	require.False(t, hit)

	// A write lands while the miss is being filled from the store.
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, readGen, "k", page{Items: []string{"before"}}))

	current, err := c.Generation(ctx)
	require.NoError(t, err)
	hit, err = c.Get(ctx, current, "k", &page{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_EntriesExpire(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "k", page{Total: 1}))
	mr.FastForward(2 * time.Minute)

	var got page
	hit, err := c.Get(ctx, 0, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_ServerDown(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	_, err := c.Generation(context.Background())
	assert.Error(t, err)

	var got page
	_, err = c.Get(context.Background(), 0, "k", &got)
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	_, err := cache.NewClient(cache.Config{})
	require.ErrorIs(t, err, cache.ErrEmptyAddress)

	mr := miniredis.RunT(t)
	client, err := cache.NewClient(cache.Config{Address: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestNopListCache(t *testing.T) {
	var c cache.ListCache = cache.NopListCache{}
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, "k", page{}))
	hit, err := c.Get(ctx, gen, "k", &page{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(ctx))
}
