package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moonforge/worker-bot/internal/domain"
)

// DomainRepository defines persistence operations for claimed subdomains.
type DomainRepository interface {
	Create(ctx context.Context, d *domain.WorkerDomain) error
	ListByWorker(ctx context.Context, workerID int64) ([]*domain.WorkerDomain, error)
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.WorkerDomain, error)
}

type domainRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDomainRepository creates a new SQL-backed domain repository.
func NewDomainRepository(db *sql.DB, log *slog.Logger) DomainRepository {
	return &domainRepository{
		db:  db,
		log: log,
	}
}

// Create inserts a claimed subdomain. The global unique index on subdomain is
// the authority for uniqueness; violations surface as ErrSubdomainTaken.
func (r *domainRepository) Create(ctx context.Context, d *domain.WorkerDomain) error {
	const query = `
		INSERT INTO worker_domains (worker_id, subdomain, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		d.WorkerID,
		d.Subdomain,
		d.IsActive,
		d.CreatedAt,
	).Scan(&d.ID); err != nil {
		if isUniqueViolation(err, "worker_domains_subdomain_key") {
			return ErrSubdomainTaken
		}

		if r.log != nil {
			r.log.Error("failed to insert worker domain",
				slog.Int64("worker_id", d.WorkerID),
				slog.String("subdomain", d.Subdomain),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("insert worker domain: %w", err)
	}

	return nil
}

// ListByWorker returns all subdomains claimed by the worker, newest first.
func (r *domainRepository) ListByWorker(ctx context.Context, workerID int64) ([]*domain.WorkerDomain, error) {
	const query = `
		SELECT id, worker_id, subdomain, is_active, created_at
		FROM worker_domains
		WHERE worker_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("list worker domains: %w", err)
	}
	defer rows.Close()

	var domains []*domain.WorkerDomain
	for rows.Next() {
		var d domain.WorkerDomain
		if err := rows.Scan(&d.ID, &d.WorkerID, &d.Subdomain, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan worker domain: %w", err)
		}
		domains = append(domains, &d)
	}

	return domains, rows.Err()
}

// FindActiveBySubdomain resolves an active subdomain for deposit attribution.
func (r *domainRepository) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.WorkerDomain, error) {
	const query = `
		SELECT id, worker_id, subdomain, is_active, created_at
		FROM worker_domains
		WHERE subdomain = $1 AND is_active
	`

	var d domain.WorkerDomain
	err := r.db.QueryRowContext(ctx, query, subdomain).Scan(&d.ID, &d.WorkerID, &d.Subdomain, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("select domain by subdomain: %w", err)
	}

	return &d, nil
}
