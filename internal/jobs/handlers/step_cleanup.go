package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/moonforge/worker-bot/internal/jobs"
)

// StepResetter resets workers stuck in text-input steps back to the menu.
type StepResetter interface {
	ResetStaleSteps(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StepCleanupHandler returns workers abandoned mid-input to the main
// menu so a forgotten prompt does not swallow their next message.
type StepCleanupHandler struct {
	workers StepResetter
	log     *slog.Logger
}

func NewStepCleanupHandler(workers StepResetter, log *slog.Logger) *StepCleanupHandler {
	return &StepCleanupHandler{workers: workers, log: log}
}

func (h *StepCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.StepCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "step cleanup: failed to decode payload",
				slog.String("task_type", t.Type()),
				slog.Any("error", err),
			)
		}
		return err
	}

	if payload.OlderThan <= 0 {
		payload.OlderThan = 24 * time.Hour
	}

	reset, err := h.workers.ResetStaleSteps(ctx, payload.OlderThan)
	if err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "step cleanup failed", slog.Any("error", err))
		}
		return err
	}

	if h.log != nil && reset > 0 {
		h.log.InfoContext(ctx, "stale steps reset",
			slog.Int64("count", reset),
			slog.Duration("older_than", payload.OlderThan),
		)
	}

	return nil
}
