package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceRoundTripAndExpiry(t *testing.T) {
	mr, cache := newMiniRedisCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, cache.Set(ctx, CacheKey("lookup", "1"), payload{Name: "x"}))
	assert.True(t, mr.Exists("cache:lookup:1"))

	var got payload
	hit, err := cache.Get(ctx, CacheKey("lookup", "1"), &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "x", got.Name)

	mr.FastForward(6 * time.Minute)
	hit, err = cache.Get(ctx, CacheKey("lookup", "1"), &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceClampsTTL(t *testing.T) {
	assert.Equal(t, MinCacheTTL, clampTTL(time.Second))
	assert.Equal(t, MaxCacheTTL, clampTTL(24*time.Hour))
	assert.Equal(t, DefaultCacheTTL, clampTTL(0))
}

func TestNilCacheServiceIsNoop(t *testing.T) {
	var cache *CacheService
	assert.Nil(t, NewCacheService(nil, time.Minute))

	require.NoError(t, cache.Set(context.Background(), "k", 1))
	var v int
	hit, err := cache.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}
