package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "folio")
	cfg := YahooRateLimit(7)

	// Redis 비활성화 시 모든 요청 허용
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 7, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestYahooRateLimit_Default(t *testing.T) {
	cfg := YahooRateLimit(0)
	assert.Equal(t, "yahoo", cfg.Key)
	assert.Equal(t, 5, cfg.Limit)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "folio")
	ctx := context.Background()

	var result []float64
	found, err := cache.Get(ctx, "missing", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "k", []float64{1, 2}, TTLDaily))
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "price:AAPL:2024-01-02", PriceKey("AAPL", "2024-01-02"))
	assert.Equal(t, "price:AAPL:2024-01-02:2024-02-01", PriceRangeKey("AAPL", "2024-01-02", "2024-02-01"))
	assert.Equal(t, "folio:cache:price:X", NewCache(disabledClient(t), "folio").fullKey("price:X"))
}
