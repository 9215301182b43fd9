package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Standard profit split between the worker and the platform.
var (
	WorkerShareRate = decimal.RequireFromString("0.8")
	AdminShareRate  = decimal.RequireFromString("0.2")
)

// Profit is a single attributed deposit, immutable once recorded.
// TxSignature is unique and enforces at-most-once processing of deposits.
type Profit struct {
	ID             int64
	WorkerID       int64
	DomainID       int64
	AmountSOL      decimal.Decimal
	AmountUSD      decimal.Decimal
	SenderAddress  string
	TxSignature    string
	WorkerShareSOL decimal.Decimal
	AdminShareSOL  decimal.Decimal
	CreatedAt      time.Time
}

// SplitDeposit divides a deposit into the 80/20 worker and admin shares.
// The admin share takes the rounding remainder so the parts always sum
// back to the original amount.
func SplitDeposit(amount decimal.Decimal) (workerShare, adminShare decimal.Decimal) {
	workerShare = amount.Mul(WorkerShareRate).RoundDown(9)
	adminShare = amount.Sub(workerShare)
	return workerShare, adminShare
}
