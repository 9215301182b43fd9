// Package pricefeed fetches the SOL/USD quote from a CoinGecko-compatible
// price oracle and caches it in Redis.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	apperrors "github.com/moonforge/worker-bot/internal/errors"
	"github.com/moonforge/worker-bot/pkg/config"
)

const (
	cacheKey        = "pricefeed:sol_usd"
	defaultCacheTTL = 5 * time.Minute
)

// Client queries the oracle's simple-price endpoint. Upstream failures trip a
// circuit breaker so a dead oracle never stalls update handling.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cacheTTL   time.Duration
	redis      *redis.Client
	breaker    *apperrors.CircuitBreaker
	log        *slog.Logger
}

// NewClient builds a price oracle client.
func NewClient(cfg config.PricefeedConfig, redisClient *redis.Client, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		cacheTTL:   cacheTTL,
		redis:      redisClient,
		breaker:    apperrors.NewCircuitBreaker(),
		log:        log,
	}
}

// SolUSD returns the current SOL/USD quote, serving from cache when fresh.
func (c *Client) SolUSD(ctx context.Context) (decimal.Decimal, error) {
	if cached, ok := c.CachedUSD(ctx); ok {
		return cached, nil
	}

	var price decimal.Decimal
	err := c.breaker.Call(func() error {
		fetched, err := c.fetch(ctx)
		if err != nil {
			return err
		}
		price = fetched
		return nil
	})
	if err != nil {
		return decimal.Zero, apperrors.NewExternalAPIError("pricefeed", err)
	}

	c.storeCache(ctx, price)
	return price, nil
}

// CachedUSD returns the cached quote without touching the oracle. Used by
// read paths that prefer staleness over latency.
func (c *Client) CachedUSD(ctx context.Context) (decimal.Decimal, bool) {
	if c.redis == nil {
		return decimal.Zero, false
	}

	raw, err := c.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		c.log.Warn("corrupt cached price, dropping", slog.String("raw", raw))
		_ = c.redis.Del(ctx, cacheKey).Err()
		return decimal.Zero, false
	}

	return price, true
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	endpoint, err := url.JoinPath(c.baseURL, "/simple/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("build price endpoint: %w", err)
	}
	endpoint += "?ids=solana&vs_currencies=usd"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price oracle returned status %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode price response: %w", err)
	}

	quote, ok := payload["solana"]
	if !ok || !quote.USD.IsPositive() {
		return decimal.Zero, fmt.Errorf("price response is missing a positive solana quote")
	}

	return quote.USD, nil
}

func (c *Client) storeCache(ctx context.Context, price decimal.Decimal) {
	if c.redis == nil {
		return
	}

	if err := c.redis.Set(ctx, cacheKey, price.String(), c.cacheTTL).Err(); err != nil {
		c.log.Warn("failed to cache price", slog.Any("error", err))
	}
}
