// Package handlers contains asynq task handlers for background jobs.
package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	apperrors "github.com/moonforge/worker-bot/internal/errors"
)

// RateSource fetches the current SOL/USD rate, refreshing the cache.
type RateSource interface {
	SolUSD(ctx context.Context) (decimal.Decimal, error)
}

// PriceRefreshHandler keeps the cached SOL/USD rate warm so that
// profile and stats views never wait on the upstream oracle.
type PriceRefreshHandler struct {
	prices RateSource
	log    *slog.Logger
}

func NewPriceRefreshHandler(prices RateSource, log *slog.Logger) *PriceRefreshHandler {
	return &PriceRefreshHandler{prices: prices, log: log}
}

func (h *PriceRefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var price decimal.Decimal
	err := apperrors.WithRetry(ctx, func() error {
		fetched, err := h.prices.SolUSD(ctx)
		if err != nil {
			return err
		}
		price = fetched
		return nil
	})
	if err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "price refresh failed",
				slog.String("task_type", t.Type()),
				slog.Any("error", err),
			)
		}
		return err
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "price refreshed", slog.String("sol_usd", price.String()))
	}

	return nil
}
