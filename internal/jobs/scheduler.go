package jobs

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/moonforge/worker-bot/pkg/config"
)

// Scheduler enqueues the periodic maintenance tasks on their cron schedules.
type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	inner *asynq.Scheduler
	cfg   config.JobsConfig
	log   *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, cfg config.JobsConfig, log *slog.Logger) Scheduler {
	if log == nil {
		log = slog.Default()
	}

	return &scheduler{
		inner: asynq.NewScheduler(redisOpt, nil),
		cfg:   cfg,
		log:   log,
	}
}

// RegisterTasks binds every periodic task to its cron expression.
func (s *scheduler) RegisterTasks() error {
	cleanup, err := NewStepCleanupTask(s.cfg.StaleStepAge)
	if err != nil {
		return fmt.Errorf("build step cleanup task: %w", err)
	}

	entries := []struct {
		cron string
		task *asynq.Task
	}{
		{s.cfg.PriceRefreshCron, NewPriceRefreshTask()},
		{s.cfg.StepCleanupCron, cleanup},
	}

	for _, entry := range entries {
		if _, err := s.inner.Register(entry.cron, entry.task); err != nil {
			return fmt.Errorf("register %s: %w", entry.task.Type(), err)
		}

		s.log.Info("periodic task registered",
			slog.String("task_type", entry.task.Type()),
			slog.String("cron", entry.cron),
		)
	}

	return nil
}

// Run starts the cron loop in a goroutine; errors end up in the log because
// at this point the process is already serving updates.
func (s *scheduler) Run() {
	go func() {
		if err := s.inner.Run(); err != nil {
			s.log.Error("scheduler stopped unexpectedly", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	s.inner.Shutdown()
}
