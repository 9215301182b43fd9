// Package worker provides business operations over worker profiles.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/workercache"
)

const cacheTTL = 5 * time.Minute

// Service provides worker profile operations with a cache in front of storage.
type Service struct {
	repo  repository.WorkerRepository
	cache *workercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.WorkerRepository, cache *workercache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Identity carries the Telegram profile fields needed to create a worker row.
type Identity struct {
	TelegramID int64
	FirstName  string
	LastName   string
	Username   string
}

// GetOrCreate fetches a worker by Telegram id or creates a fresh profile.
// New workers start idle with an empty balance and pending status.
func (s *Service) GetOrCreate(ctx context.Context, sender Identity) (*domain.Worker, error) {
	if sender.TelegramID == 0 {
		return nil, errors.New("telegram sender id is empty")
	}

	if cached, err := s.cache.Get(ctx, sender.TelegramID); err == nil && cached != nil {
		return cached, nil
	}

	worker, err := s.repo.FindByTelegramID(ctx, sender.TelegramID)
	if err == nil {
		_ = s.cache.Set(ctx, sender.TelegramID, worker, cacheTTL)
		return worker, nil
	}

	if !errors.Is(err, repository.ErrWorkerNotFound) {
		s.logError("get_or_create.find", sender.TelegramID, err)
		return nil, fmt.Errorf("get worker: %w", err)
	}

	newWorker := &domain.Worker{
		TelegramID: sender.TelegramID,
		FirstName:  sender.FirstName,
		LastName:   sender.LastName,
		Username:   sender.Username,
		Status:     domain.StatusPending,
		Step:       string(state.StepIdle),
		BalanceSOL: decimal.Zero,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, newWorker); err != nil {
		s.logError("get_or_create.create", sender.TelegramID, err)
		return nil, fmt.Errorf("create worker: %w", err)
	}

	s.log.Info("created new worker", slog.Int64("telegram_id", sender.TelegramID))
	return newWorker, nil
}

// Get fetches a worker by Telegram id, consulting the cache first.
func (s *Service) Get(ctx context.Context, telegramID int64) (*domain.Worker, error) {
	if cached, err := s.cache.Get(ctx, telegramID); err == nil && cached != nil {
		return cached, nil
	}

	worker, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, telegramID, worker, cacheTTL)
	return worker, nil
}

// Invalidate drops the cached profile. Mutating workflow paths call this
// after every worker row update.
func (s *Service) Invalidate(ctx context.Context, telegramID int64) {
	if err := s.cache.Invalidate(ctx, telegramID); err != nil {
		s.logError("invalidate", telegramID, err)
	}
}

func (s *Service) logError(operation string, telegramID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("worker service operation failed",
		slog.String("operation", operation),
		slog.Int64("telegram_id", telegramID),
		slog.Any("error", err),
	)
}
