// Package idempotency provides at-most-once execution guards for Telegram
// callback redelivery and deposit webhook retries.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInProgress signals that another delivery of the same update is being
// processed right now.
var ErrInProgress = errors.New("update with this key is already in progress")

// Operation is the guarded unit of work.
type Operation func(ctx context.Context) error

// Result reports whether the operation actually ran.
type Result struct {
	// Duplicate is true when a previous delivery already completed the work
	// and the operation was skipped.
	Duplicate bool
}

// Manager executes an operation at most once per key within the TTL window.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

// NewManager builds a store-backed idempotency manager.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{store: store, log: log}
}

// Execute takes the per-key lock, runs fn once, and records completion. A
// redelivery during processing gets ErrInProgress; a redelivery after
// completion gets a Duplicate result without running fn.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	locked, err := m.store.Lock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}

	if !locked {
		done, err := m.store.IsCompleted(ctx, key)
		if err != nil {
			return nil, err
		}
		if done {
			m.log.Info("skipping duplicate delivery", slog.String("key", key))
			return &Result{Duplicate: true}, nil
		}
		return nil, ErrInProgress
	}
	defer m.store.ReleaseLock(ctx, key)

	done, err := m.store.IsCompleted(ctx, key)
	if err != nil {
		return nil, err
	}
	if done {
		m.log.Info("skipping duplicate delivery", slog.String("key", key))
		return &Result{Duplicate: true}, nil
	}

	if err := fn(ctx); err != nil {
		return nil, err
	}

	if err := m.store.MarkCompleted(ctx, key, ttl); err != nil {
		// The work itself succeeded; a failed marker only risks reprocessing.
		m.log.Error("failed to mark delivery completed", slog.String("key", key), slog.Any("error", err))
	}

	return &Result{}, nil
}

const lockTTL = time.Minute
