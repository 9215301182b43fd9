package pricefeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/pkg/config"
)

func newTestClient(t *testing.T, upstream *httptest.Server) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := config.PricefeedConfig{
		BaseURL:  upstream.URL,
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	}

	return NewClient(cfg, redisClient, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestSolUSDFetchesAndCaches(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/simple/price", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"solana":{"usd":142.35}}`))
	}))
	defer upstream.Close()

	client, _ := newTestClient(t, upstream)
	ctx := context.Background()

	price, err := client.SolUSD(ctx)
	require.NoError(t, err)
	assert.Equal(t, "142.35", price.String())

	// Second read is served from cache.
	price, err = client.SolUSD(ctx)
	require.NoError(t, err)
	assert.Equal(t, "142.35", price.String())
	assert.Equal(t, 1, calls)
}

func TestSolUSDUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	client, _ := newTestClient(t, upstream)

	_, err := client.SolUSD(context.Background())
	require.Error(t, err)

	_, ok := client.CachedUSD(context.Background())
	assert.False(t, ok)
}

func TestCachedUSDDropsCorruptValue(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	client, mr := newTestClient(t, upstream)
	require.NoError(t, mr.Set("pricefeed:sol_usd", "not-a-number"))

	_, ok := client.CachedUSD(context.Background())
	assert.False(t, ok)
	assert.False(t, mr.Exists("pricefeed:sol_usd"))
}
