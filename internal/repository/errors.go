// Package repository implements PostgreSQL persistence for workers, domains,
// profits, and withdrawal requests.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrWorkerNotFound indicates the referenced worker row does not exist.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrDomainNotFound indicates no domain row matches the lookup.
	ErrDomainNotFound = errors.New("worker domain not found")
	// ErrWithdrawalNotFound indicates the referenced withdrawal request does not exist.
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
	// ErrSubdomainTaken indicates the subdomain unique index rejected an insert.
	ErrSubdomainTaken = errors.New("subdomain already taken")
	// ErrPendingWithdrawalExists indicates the partial unique index rejected a
	// second pending withdrawal for the same worker.
	ErrPendingWithdrawalExists = errors.New("worker already has a pending withdrawal")
	// ErrDuplicateTransaction indicates the tx signature was already processed.
	ErrDuplicateTransaction = errors.New("transaction already processed")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally narrowed to a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != pgUniqueViolation {
		return false
	}

	return constraint == "" || pqErr.Constraint == constraint
}
