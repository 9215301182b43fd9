package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/state"
)

// WorkerRepository defines persistence operations for workers.
type WorkerRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Worker, error)
	FindByID(ctx context.Context, id int64) (*domain.Worker, error)
	Create(ctx context.Context, worker *domain.Worker) error
	UpdateStep(ctx context.Context, telegramID int64, step state.Step) error
	SaveTrafficType(ctx context.Context, telegramID int64, value string, next state.Step) error
	SaveHours(ctx context.Context, telegramID int64, value string, next state.Step) error
	SaveExperience(ctx context.Context, telegramID int64, value string, next state.Step) error
	Approve(ctx context.Context, telegramID, approvedBy int64) error
	Ban(ctx context.Context, telegramID int64) error
	Unban(ctx context.Context, telegramID int64) error
	CountByStatus(ctx context.Context) (map[string]int, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*domain.Worker, int, error)
	ResetStaleSteps(ctx context.Context, olderThan time.Duration) (int64, error)
}

const workerColumns = `
	id, telegram_id, first_name, last_name, username, status, step,
	balance_sol, traffic_type, hours_per_day, experience,
	approved_at, approved_by, created_at
`

type workerRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewWorkerRepository creates a new SQL-backed worker repository.
func NewWorkerRepository(db *sql.DB, log *slog.Logger) WorkerRepository {
	return &workerRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a worker by their Telegram identifier.
func (r *workerRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE telegram_id = $1`
	return r.scanWorker(ctx, query, telegramID)
}

// FindByID retrieves a worker by the internal primary key.
func (r *workerRepository) FindByID(ctx context.Context, id int64) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`
	return r.scanWorker(ctx, query, id)
}

func (r *workerRepository) scanWorker(ctx context.Context, query string, arg any) (*domain.Worker, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var (
		worker      domain.Worker
		lastName    sql.NullString
		username    sql.NullString
		trafficType sql.NullString
		hoursPerDay sql.NullString
		experience  sql.NullString
		approvedAt  sql.NullTime
		approvedBy  sql.NullInt64
	)

	if err := row.Scan(
		&worker.ID,
		&worker.TelegramID,
		&worker.FirstName,
		&lastName,
		&username,
		&worker.Status,
		&worker.Step,
		&worker.BalanceSOL,
		&trafficType,
		&hoursPerDay,
		&experience,
		&approvedAt,
		&approvedBy,
		&worker.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch worker", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select worker: %w", err)
	}

	worker.LastName = lastName.String
	worker.Username = username.String
	worker.TrafficType = trafficType.String
	worker.HoursPerDay = hoursPerDay.String
	worker.Experience = experience.String
	if approvedAt.Valid {
		t := approvedAt.Time
		worker.ApprovedAt = &t
	}
	if approvedBy.Valid {
		v := approvedBy.Int64
		worker.ApprovedBy = &v
	}

	return &worker, nil
}

// Create persists a new worker record.
func (r *workerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	const query = `
		INSERT INTO workers (telegram_id, first_name, last_name, username, status, step, balance_sol, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		worker.TelegramID,
		worker.FirstName,
		nullable(worker.LastName),
		nullable(worker.Username),
		worker.Status,
		worker.Step,
		worker.BalanceSOL,
		worker.CreatedAt,
	).Scan(&worker.ID); err != nil {
		if r.log != nil {
			r.log.Error("failed to create worker", slog.Int64("telegram_id", worker.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("insert worker: %w", err)
	}

	return nil
}

// UpdateStep moves the worker to the provided workflow step.
func (r *workerRepository) UpdateStep(ctx context.Context, telegramID int64, step state.Step) error {
	const query = `
		UPDATE workers SET step = $2, step_changed_at = now()
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "update worker step", telegramID, string(step))
}

// SaveTrafficType records the traffic source choice and advances the step.
func (r *workerRepository) SaveTrafficType(ctx context.Context, telegramID int64, value string, next state.Step) error {
	const query = `
		UPDATE workers SET traffic_type = $2, step = $3, step_changed_at = now()
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "save traffic type", telegramID, value, string(next))
}

// SaveHours records the hours-per-day choice and advances the step.
func (r *workerRepository) SaveHours(ctx context.Context, telegramID int64, value string, next state.Step) error {
	const query = `
		UPDATE workers SET hours_per_day = $2, step = $3, step_changed_at = now()
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "save hours", telegramID, value, string(next))
}

// SaveExperience records the experience choice, flags the application as
// pending review, and advances the step.
func (r *workerRepository) SaveExperience(ctx context.Context, telegramID int64, value string, next state.Step) error {
	const query = `
		UPDATE workers SET experience = $2, status = 'pending', step = $3, step_changed_at = now()
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "save experience", telegramID, value, string(next))
}

// Approve marks the worker approved and completes registration.
func (r *workerRepository) Approve(ctx context.Context, telegramID, approvedBy int64) error {
	const query = `
		UPDATE workers
		SET status = 'approved', step = 'completed', step_changed_at = now(),
		    approved_at = now(), approved_by = $2
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "approve worker", telegramID, approvedBy)
}

// Ban marks the worker banned. Soft state, the row stays.
func (r *workerRepository) Ban(ctx context.Context, telegramID int64) error {
	const query = `
		UPDATE workers SET status = 'banned', step = 'banned', step_changed_at = now()
		WHERE telegram_id = $1
	`

	return r.execExpectingRow(ctx, query, "ban worker", telegramID)
}

// Unban restores a banned worker to the approved lattice.
func (r *workerRepository) Unban(ctx context.Context, telegramID int64) error {
	const query = `
		UPDATE workers SET status = 'approved', step = 'completed', step_changed_at = now()
		WHERE telegram_id = $1 AND status = 'banned'
	`

	return r.execExpectingRow(ctx, query, "unban worker", telegramID)
}

// CountByStatus returns worker counts grouped by lifecycle status.
func (r *workerRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, count(*) FROM workers GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count workers by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan worker status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// ListRecent returns the most recently registered workers plus the total count.
func (r *workerRepository) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Worker, int, error) {
	const query = `
		SELECT ` + workerColumns + `, count(*) OVER() AS total
		FROM workers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list recent workers: %w", err)
	}
	defer rows.Close()

	var (
		workers []*domain.Worker
		total   int
	)

	for rows.Next() {
		var (
			worker      domain.Worker
			lastName    sql.NullString
			username    sql.NullString
			trafficType sql.NullString
			hoursPerDay sql.NullString
			experience  sql.NullString
			approvedAt  sql.NullTime
			approvedBy  sql.NullInt64
		)

		if err := rows.Scan(
			&worker.ID,
			&worker.TelegramID,
			&worker.FirstName,
			&lastName,
			&username,
			&worker.Status,
			&worker.Step,
			&worker.BalanceSOL,
			&trafficType,
			&hoursPerDay,
			&experience,
			&approvedAt,
			&approvedBy,
			&worker.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan worker row: %w", err)
		}

		worker.LastName = lastName.String
		worker.Username = username.String
		worker.TrafficType = trafficType.String
		worker.HoursPerDay = hoursPerDay.String
		worker.Experience = experience.String

		workers = append(workers, &worker)
	}

	return workers, total, rows.Err()
}

// ResetStaleSteps returns workers stuck in an awaiting step back to completed.
func (r *workerRepository) ResetStaleSteps(ctx context.Context, olderThan time.Duration) (int64, error) {
	const query = `
		UPDATE workers SET step = 'completed', step_changed_at = now()
		WHERE step IN ('awaiting_domain', 'awaiting_wallet')
		  AND step_changed_at < now() - $1::interval
	`

	result, err := r.db.ExecContext(ctx, query, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("reset stale steps: %w", err)
	}

	return result.RowsAffected()
}

func (r *workerRepository) execExpectingRow(ctx context.Context, query, op string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if r.log != nil {
			r.log.Error("worker update failed", slog.String("op", op), slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if affected == 0 {
		return ErrWorkerNotFound
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
