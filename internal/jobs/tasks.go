package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypePriceRefresh = "price:refresh"
	TaskTypeStepCleanup  = "steps:cleanup"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// StepCleanupPayload bounds how long a worker may sit in a text-input
// step before it is reset.
type StepCleanupPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewPriceRefreshTask builds a task that re-fetches the SOL/USD rate.
func NewPriceRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypePriceRefresh, nil, asynq.Queue(QueueDefault))
}

// NewStepCleanupTask builds a task that resets stale input steps.
func NewStepCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(StepCleanupPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeStepCleanup, payload, asynq.Queue(QueueLow)), nil
}
