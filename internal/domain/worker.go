package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkerStatus is the lifecycle status of a traffic partner.
type WorkerStatus string

const (
	// StatusPending marks a worker whose application awaits admin review.
	StatusPending WorkerStatus = "pending"
	// StatusApproved marks a worker allowed to claim domains and withdraw.
	StatusApproved WorkerStatus = "approved"
	// StatusBanned marks a rejected or banned worker. Soft state, never deleted.
	StatusBanned WorkerStatus = "banned"
)

// Worker represents a registered traffic partner of the launcher.
type Worker struct {
	ID          int64
	TelegramID  int64
	FirstName   string
	LastName    string
	Username    string
	Status      WorkerStatus
	Step        string
	BalanceSOL  decimal.Decimal
	TrafficType string
	HoursPerDay string
	Experience  string
	ApprovedAt  *time.Time
	ApprovedBy  *int64
	CreatedAt   time.Time
}

// IsApproved reports whether the worker may claim domains and request withdrawals.
func (w *Worker) IsApproved() bool {
	return w != nil && w.Status == StatusApproved
}

// DisplayName returns the most specific human-readable name available.
func (w *Worker) DisplayName() string {
	if w == nil {
		return ""
	}
	if w.Username != "" {
		return "@" + w.Username
	}
	if w.LastName != "" {
		return w.FirstName + " " + w.LastName
	}
	return w.FirstName
}
