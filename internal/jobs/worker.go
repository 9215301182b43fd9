package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker runs background task handlers off the Redis-backed queues.
type Worker interface {
	RegisterHandler(taskType string, handler asynq.Handler)
	Run() error
	Shutdown()
}

// queueWeights gives price refreshes priority over housekeeping.
var queueWeights = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

type worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *slog.Logger
}

var _ Worker = (*worker)(nil)

// NewWorker builds a Worker consuming from the standard queue set. Failed
// tasks are logged here; asynq's default backoff handles the retries.
func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, log *slog.Logger) Worker {
	if log == nil {
		log = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues:      queueWeights,
		Concurrency: concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.ErrorContext(ctx, "background task failed",
				slog.String("task_type", task.Type()),
				slog.Any("error", err),
			)
		}),
	})

	w := &worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
	w.mux.Use(w.timing)

	return w
}

func (w *worker) RegisterHandler(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

// Run blocks processing tasks until Shutdown is called.
func (w *worker) Run() error {
	w.log.Info("background worker started", slog.Int("queues", len(queueWeights)))
	return w.server.Run(w.mux)
}

// Shutdown waits for in-flight tasks and stops the server.
func (w *worker) Shutdown() {
	w.log.Info("background worker stopping")
	w.server.Shutdown()
}

func (w *worker) timing(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)
		w.log.DebugContext(ctx, "background task processed",
			slog.String("task_type", task.Type()),
			slog.Duration("took", time.Since(start)),
			slog.Bool("ok", err == nil),
		)
		return err
	})
}
