package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type translation struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheFromClient(client, "test"), mr
}

func TestNewRedisClientAppliesOptions(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisClient(ctx,
		WithRedisHost(mr.Host()),
		WithRedisPort(port),
		WithRedisPassword("secret"),
		WithRedisDB(2),
		WithRedisPool(4, 1),
	)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 4, client.Options().PoolSize)

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	got, err := mr.DB(2).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = NewRedisClient(ctx, WithRedisHost(mr.Host()), WithRedisPort(port), WithRedisPassword("wrong"))
	assert.Error(t, err)
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", translation{Text: "你好", Lang: "zh-CN"}, time.Minute))

	var got translation
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, "你好", got.Text)

	var missing translation
	assert.ErrorIs(t, mc.Get(ctx, "absent", &missing), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryCleanup(0))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a becomes most recent
	_ = mc.Set(ctx, "c", 3, time.Minute)

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	_ = mc.Set(ctx, "k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestRedisCachePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)

	require.NoError(t, rc.Set(ctx, "tr:abc", translation{Text: "hi"}, time.Minute))
	assert.True(t, mr.Exists("test:tr:abc"))

	var got translation
	require.NoError(t, rc.Get(ctx, "tr:abc", &got))
	assert.Equal(t, "hi", got.Text)

	require.NoError(t, rc.Delete(ctx, "tr:abc"))
	assert.ErrorIs(t, rc.Get(ctx, "tr:abc", &got), ErrCacheMiss)
}

func TestLayeredCacheBackfillsMemory(t *testing.T) {
	ctx := context.Background()
	rc, _ := newRedis(t)
	require.NoError(t, rc.Set(ctx, "k", translation{Text: "from redis"}, time.Minute))

	lc := NewLayeredCache(rc, time.Minute, WithMemoryCleanup(0))
	var got translation
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "from redis", got.Text)

	ok, _ := lc.l1.Exists(ctx, "k")
	assert.True(t, ok)
}

func TestGetOrLoadCachesOnlySuccess(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "loaded", nil
	}
	v, err := GetOrLoad(ctx, mc, "x", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	_, _ = GetOrLoad(ctx, mc, "x", time.Minute, load)
	assert.Equal(t, 1, calls)

	_, err = GetOrLoad(ctx, mc, "y", time.Minute, func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	assert.Error(t, err)
	ok, _ := mc.Exists(ctx, "y")
	assert.False(t, ok)
}
