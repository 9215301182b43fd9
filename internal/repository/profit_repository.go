package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
)

// ProfitRepository defines persistence operations for attributed deposits.
type ProfitRepository interface {
	Record(ctx context.Context, p *domain.Profit) error
	Totals(ctx context.Context) (totalSOL, adminSOL decimal.Decimal, err error)
	SumByWorker(ctx context.Context, workerID int64) (decimal.Decimal, error)
}

type profitRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewProfitRepository creates a new SQL-backed profit repository.
func NewProfitRepository(db *sql.DB, log *slog.Logger) ProfitRepository {
	return &profitRepository{
		db:  db,
		log: log,
	}
}

// Record persists an attributed deposit and credits the worker's share in
// one transaction, so a partially applied deposit can never outlive a crash.
// The unique index on tx_signature makes the whole operation at-most-once;
// duplicates surface as ErrDuplicateTransaction and credit nothing.
func (r *profitRepository) Record(ctx context.Context, p *domain.Profit) error {
	const insertQuery = `
		INSERT INTO profits (
			worker_id, domain_id, amount_sol, amount_usd, sender_address,
			tx_signature, worker_share_sol, admin_share_sol, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	const creditQuery = `
		UPDATE workers SET balance_sol = balance_sol + $2 WHERE id = $1
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deposit transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		p.WorkerID,
		p.DomainID,
		p.AmountSOL,
		p.AmountUSD,
		p.SenderAddress,
		p.TxSignature,
		p.WorkerShareSOL,
		p.AdminShareSOL,
		p.CreatedAt,
	).Scan(&p.ID); err != nil {
		if isUniqueViolation(err, "profits_tx_signature_key") {
			return ErrDuplicateTransaction
		}

		if r.log != nil {
			r.log.Error("failed to insert profit", slog.Int64("worker_id", p.WorkerID), slog.Any("error", err))
		}
		return fmt.Errorf("insert profit: %w", err)
	}

	result, err := tx.ExecContext(ctx, creditQuery, p.WorkerID, p.WorkerShareSOL)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to credit worker share", slog.Int64("worker_id", p.WorkerID), slog.Any("error", err))
		}
		return fmt.Errorf("credit worker share: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit worker share: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrWorkerNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deposit transaction: %w", err)
	}

	return nil
}

// Totals returns the all-time deposit volume and the accumulated admin share.
func (r *profitRepository) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(sum(amount_sol), 0), COALESCE(sum(admin_share_sol), 0) FROM profits
	`

	var totalSOL, adminSOL decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query).Scan(&totalSOL, &adminSOL); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum profits: %w", err)
	}

	return totalSOL, adminSOL, nil
}

// SumByWorker returns the worker's all-time earned share.
func (r *profitRepository) SumByWorker(ctx context.Context, workerID int64) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(sum(worker_share_sol), 0) FROM profits WHERE worker_id = $1
	`

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, workerID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum worker profits: %w", err)
	}

	return sum, nil
}
