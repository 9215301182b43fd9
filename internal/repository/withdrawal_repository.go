package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
)

// WithdrawalRepository defines persistence operations for withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, req *domain.WithdrawalRequest) error
	FindByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error)
	HasPending(ctx context.Context, workerID int64) (bool, error)
	Approve(ctx context.Context, id, resolvedBy int64) error
	Reject(ctx context.Context, id, resolvedBy int64) error
	MarkPaid(ctx context.Context, id, resolvedBy int64) error
	SumPending(ctx context.Context) (decimal.Decimal, error)
}

// ErrWithdrawalNotPending indicates the request was already resolved and
// cannot move through the requested transition again.
var ErrWithdrawalNotPending = errors.New("withdrawal request is not in the expected status")

type withdrawalRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewWithdrawalRepository creates a new SQL-backed withdrawal repository.
func NewWithdrawalRepository(db *sql.DB, log *slog.Logger) WithdrawalRepository {
	return &withdrawalRepository{
		db:  db,
		log: log,
	}
}

// Create inserts a pending withdrawal request. The partial unique index on
// (worker_id) WHERE status = 'pending' is the authority for the at-most-one
// pending invariant; violations surface as ErrPendingWithdrawalExists.
func (r *withdrawalRepository) Create(ctx context.Context, req *domain.WithdrawalRequest) error {
	const query = `
		INSERT INTO withdrawal_requests (worker_id, amount_sol, wallet_address, status, created_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		req.WorkerID,
		req.AmountSOL,
		req.WalletAddress,
		req.CreatedAt,
	).Scan(&req.ID); err != nil {
		if isUniqueViolation(err, "withdrawal_requests_one_pending_idx") {
			return ErrPendingWithdrawalExists
		}

		if r.log != nil {
			r.log.Error("failed to insert withdrawal request", slog.Int64("worker_id", req.WorkerID), slog.Any("error", err))
		}
		return fmt.Errorf("insert withdrawal request: %w", err)
	}

	req.Status = domain.WithdrawalPending
	return nil
}

// FindByID retrieves a withdrawal request by its identifier.
func (r *withdrawalRepository) FindByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	const query = `
		SELECT id, worker_id, amount_sol, wallet_address, status, resolved_by, resolved_at, created_at
		FROM withdrawal_requests
		WHERE id = $1
	`

	var (
		req        domain.WithdrawalRequest
		resolvedBy sql.NullInt64
		resolvedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.WorkerID,
		&req.AmountSOL,
		&req.WalletAddress,
		&req.Status,
		&resolvedBy,
		&resolvedAt,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("select withdrawal request: %w", err)
	}

	if resolvedBy.Valid {
		v := resolvedBy.Int64
		req.ResolvedBy = &v
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		req.ResolvedAt = &t
	}

	return &req, nil
}

// HasPending reports whether the worker currently has a pending request.
func (r *withdrawalRepository) HasPending(ctx context.Context, workerID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM withdrawal_requests WHERE worker_id = $1 AND status = 'pending'
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, workerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending withdrawal: %w", err)
	}

	return exists, nil
}

// Approve moves a pending request to approved and zeroes the owner's balance
// in the same transaction: the funds are committed to the payout, so a crash
// between the two writes must not leave a balance the worker can re-request.
func (r *withdrawalRepository) Approve(ctx context.Context, id, resolvedBy int64) error {
	const approveQuery = `
		UPDATE withdrawal_requests
		SET status = 'approved', resolved_by = $2, resolved_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING worker_id
	`
	const zeroQuery = `
		UPDATE workers SET balance_sol = 0 WHERE id = $1
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve transaction: %w", err)
	}
	defer tx.Rollback()

	var workerID int64
	if err := tx.QueryRowContext(ctx, approveQuery, id, resolvedBy).Scan(&workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWithdrawalNotPending
		}

		if r.log != nil {
			r.log.Error("failed to approve withdrawal request", slog.Int64("request_id", id), slog.Any("error", err))
		}
		return fmt.Errorf("approve withdrawal request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, zeroQuery, workerID); err != nil {
		if r.log != nil {
			r.log.Error("failed to zero worker balance", slog.Int64("worker_id", workerID), slog.Any("error", err))
		}
		return fmt.Errorf("zero worker balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve transaction: %w", err)
	}

	return nil
}

// Reject moves a pending request to rejected.
func (r *withdrawalRepository) Reject(ctx context.Context, id, resolvedBy int64) error {
	return r.resolve(ctx, id, resolvedBy, domain.WithdrawalPending, domain.WithdrawalRejected)
}

// MarkPaid moves an approved request to paid after the manual transfer.
func (r *withdrawalRepository) MarkPaid(ctx context.Context, id, resolvedBy int64) error {
	return r.resolve(ctx, id, resolvedBy, domain.WithdrawalApproved, domain.WithdrawalPaid)
}

// resolve guards lifecycle transitions with the expected current status so a
// redelivered admin callback cannot resolve the same request twice.
func (r *withdrawalRepository) resolve(ctx context.Context, id, resolvedBy int64, from, to domain.WithdrawalStatus) error {
	const query = `
		UPDATE withdrawal_requests
		SET status = $3, resolved_by = $4, resolved_at = now()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, from, to, resolvedBy)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to resolve withdrawal request",
				slog.Int64("request_id", id),
				slog.String("to", string(to)),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("resolve withdrawal request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve withdrawal request: rows affected: %w", err)
	}

	if affected == 0 {
		return ErrWithdrawalNotPending
	}

	return nil
}

// SumPending returns the total SOL amount locked in pending requests.
func (r *withdrawalRepository) SumPending(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(sum(amount_sol), 0) FROM withdrawal_requests WHERE status = 'pending'
	`

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum pending withdrawals: %w", err)
	}

	return sum, nil
}
