package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the lifecycle status of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

// MinWithdrawalSOL is the minimum balance required to open a withdrawal request.
var MinWithdrawalSOL = decimal.RequireFromString("0.1")

// Wallet address length bounds. A loose sanity check of base58-encoded
// Solana addresses, not a cryptographic validation.
const (
	WalletAddressMinLen = 32
	WalletAddressMaxLen = 44
)

// WithdrawalRequest is a worker-initiated cash-out of the accumulated balance.
// A worker holds at most one pending request at a time.
type WithdrawalRequest struct {
	ID            int64
	WorkerID      int64
	AmountSOL     decimal.Decimal
	WalletAddress string
	Status        WithdrawalStatus
	ResolvedBy    *int64
	ResolvedAt    *time.Time
	CreatedAt     time.Time
}

// IsValidWalletAddress applies the length sanity check to a candidate address.
func IsValidWalletAddress(addr string) bool {
	return len(addr) >= WalletAddressMinLen && len(addr) <= WalletAddressMaxLen
}
