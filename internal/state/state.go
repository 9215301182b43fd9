// Package state defines the worker workflow steps, the transition table
// between them, and the per-worker locking used to serialize updates.
package state

import "errors"

// Step is a workflow step of a worker conversation.
type Step string

const (
	// StepIdle indicates a fresh worker that has not started registration.
	StepIdle Step = "idle"
	// StepAwaitingTraffic indicates the worker chooses a traffic source.
	StepAwaitingTraffic Step = "awaiting_traffic"
	// StepAwaitingHours indicates the worker chooses daily hours.
	StepAwaitingHours Step = "awaiting_hours"
	// StepAwaitingExperience indicates the worker chooses an experience level.
	StepAwaitingExperience Step = "awaiting_experience"
	// StepPendingReview indicates the application awaits admin review.
	StepPendingReview Step = "pending_review"
	// StepCompleted indicates registration is done and the main menu is active.
	StepCompleted Step = "completed"
	// StepAwaitingDomain indicates the next text message is a subdomain candidate.
	StepAwaitingDomain Step = "awaiting_domain"
	// StepAwaitingWallet indicates the next text message is a wallet address.
	StepAwaitingWallet Step = "awaiting_wallet"
	// StepBanned indicates a rejected or banned worker.
	StepBanned Step = "banned"
)

var (
	// ErrInvalidTransition indicates that a requested step change is not allowed.
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrLocked indicates that a concurrent update already holds the worker lock.
	ErrLocked = errors.New("worker is locked, try again later")
)

// Known reports whether s is a member of the closed step enumeration.
func Known(s Step) bool {
	switch s {
	case StepIdle, StepAwaitingTraffic, StepAwaitingHours, StepAwaitingExperience,
		StepPendingReview, StepCompleted, StepAwaitingDomain, StepAwaitingWallet,
		StepBanned:
		return true
	}
	return false
}
