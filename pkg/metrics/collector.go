// Package metrics exposes Prometheus instrumentation for the worker bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/moonforge/worker-bot/internal/state"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled labeled by action and status",
		},
		[]string{"action", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of bot update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	stepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_step_transitions_total",
			Help: "Total number of workflow step transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	profitsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profits_recorded_total",
			Help: "Total number of attributed deposits recorded",
		},
	)
	withdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Withdrawal lifecycle events labeled by resulting status",
		},
		[]string{"status"},
	)
	workersByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workers_by_status",
			Help: "Number of workers per lifecycle status",
		},
		[]string{"status"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStepTransition)
}

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(action, status).Inc()
	updateDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordStepTransition tracks workflow transitions.
func RecordStepTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stepTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordProfit counts a recorded deposit.
func RecordProfit() {
	profitsRecordedTotal.Inc()
}

// RecordWithdrawal counts a withdrawal lifecycle event.
func RecordWithdrawal(status string) {
	if status == "" {
		status = "unknown"
	}

	withdrawalsTotal.WithLabelValues(status).Inc()
}

// SetWorkersByStatus updates the per-status worker gauge.
func SetWorkersByStatus(status string, count int) {
	if status == "" {
		status = "unknown"
	}

	workersByStatus.WithLabelValues(status).Set(float64(count))
}

// StatusCounter supplies worker counts per lifecycle status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// WorkerGaugeCollector periodically refreshes the workers_by_status gauge.
type WorkerGaugeCollector struct {
	counter  StatusCounter
	interval time.Duration
}

// NewWorkerGaugeCollector builds a collector refreshing every interval.
func NewWorkerGaugeCollector(counter StatusCounter, interval time.Duration) *WorkerGaugeCollector {
	if interval <= 0 {
		interval = time.Minute
	}

	return &WorkerGaugeCollector{counter: counter, interval: interval}
}

// Run refreshes the gauge until ctx is canceled.
func (c *WorkerGaugeCollector) Run(ctx context.Context) {
	if c == nil || c.counter == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts, err := c.counter.CountByStatus(ctx)
			if err != nil {
				continue
			}

			for status, count := range counts {
				SetWorkersByStatus(status, count)
			}
		}
	}
}
