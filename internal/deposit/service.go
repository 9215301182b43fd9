// Package deposit processes inbound transfer notifications from the payment
// watcher: it attributes the deposit to a worker via the tagged subdomain,
// splits it 80/20, and credits the worker's balance.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/workflow"
	"github.com/moonforge/worker-bot/pkg/metrics"
)

// Sentinel errors surfaced to the HTTP handler.
var (
	ErrUnknownSubdomain = errors.New("no active domain matches the deposit tag")
	ErrDuplicateDeposit = errors.New("deposit transaction already processed")
	ErrInvalidAmount    = errors.New("deposit amount must be positive")
)

// The service needs only a narrow slice of the repositories.
type workerStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Worker, error)
}

type domainStore interface {
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.WorkerDomain, error)
}

// profitStore persists the deposit and credits the worker's share atomically.
type profitStore interface {
	Record(ctx context.Context, p *domain.Profit) error
}

// Notifier delivers out-of-band messages to Telegram chats. Failures are
// logged and swallowed; the recorded profit is never rolled back because a
// notification bounced.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// PriceSource supplies an optional USD quote for recorded deposits.
type PriceSource interface {
	CachedUSD(ctx context.Context) (decimal.Decimal, bool)
}

// Notification describes a single inbound transfer.
type Notification struct {
	TxSignature   string
	Subdomain     string
	AmountSOL     decimal.Decimal
	SenderAddress string
}

// Service applies deposit notifications to worker balances.
type Service struct {
	workers     workerStore
	domains     domainStore
	profits     profitStore
	notifier    Notifier
	prices      PriceSource
	adminChatID int64
	log         *slog.Logger
}

// NewService constructs the deposit processor.
func NewService(
	workers workerStore,
	domains domainStore,
	profits profitStore,
	notifier Notifier,
	prices PriceSource,
	adminChatID int64,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		workers:     workers,
		domains:     domains,
		profits:     profits,
		notifier:    notifier,
		prices:      prices,
		adminChatID: adminChatID,
		log:         log,
	}
}

// Process records a deposit at most once per transaction signature. The
// unique index on tx_signature is the dedupe authority, so webhook retries
// come back as ErrDuplicateDeposit without a second balance credit.
func (s *Service) Process(ctx context.Context, n Notification) (*domain.Profit, error) {
	if !n.AmountSOL.IsPositive() {
		return nil, ErrInvalidAmount
	}

	sub := workflow.NormalizeSubdomain(n.Subdomain)
	claimed, err := s.domains.FindActiveBySubdomain(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrDomainNotFound) {
			return nil, ErrUnknownSubdomain
		}
		return nil, fmt.Errorf("resolve deposit subdomain: %w", err)
	}

	owner, err := s.workers.FindByID(ctx, claimed.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("resolve domain owner: %w", err)
	}

	workerShare, adminShare := domain.SplitDeposit(n.AmountSOL)

	profit := &domain.Profit{
		WorkerID:       owner.ID,
		DomainID:       claimed.ID,
		AmountSOL:      n.AmountSOL,
		AmountUSD:      s.usdEquivalent(ctx, n.AmountSOL),
		SenderAddress:  n.SenderAddress,
		TxSignature:    n.TxSignature,
		WorkerShareSOL: workerShare,
		AdminShareSOL:  adminShare,
		CreatedAt:      time.Now().UTC(),
	}

	// Record is transactional: a failure rolls back both the profit row and
	// the credit, so the watcher's retry starts from a clean slate.
	if err := s.profits.Record(ctx, profit); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			return nil, ErrDuplicateDeposit
		}
		return nil, fmt.Errorf("record profit: %w", err)
	}

	metrics.RecordProfit()

	s.log.Info("deposit processed",
		slog.Int64("worker_id", owner.ID),
		slog.String("subdomain", sub),
		slog.String("amount_sol", n.AmountSOL.String()),
		slog.String("tx_signature", n.TxSignature),
	)

	s.notify(ctx, owner, profit)

	return profit, nil
}

func (s *Service) usdEquivalent(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	if s.prices == nil {
		return decimal.Zero
	}

	usd, ok := s.prices.CachedUSD(ctx)
	if !ok {
		return decimal.Zero
	}

	return amount.Mul(usd).RoundBank(2)
}

func (s *Service) notify(ctx context.Context, owner *domain.Worker, profit *domain.Profit) {
	if s.notifier == nil {
		return
	}

	workerText := fmt.Sprintf(
		"💰 Новый депозит!\n\nВаша доля: %s SOL\nБаланс пополнен.",
		profit.WorkerShareSOL.StringFixedBank(4),
	)
	if err := s.notifier.Notify(ctx, owner.TelegramID, workerText); err != nil {
		s.log.Error("failed to notify worker about deposit",
			slog.Int64("telegram_id", owner.TelegramID),
			slog.Any("error", err),
		)
	}

	if s.adminChatID == 0 {
		return
	}

	adminText := fmt.Sprintf(
		"💰 Депозит %s SOL через %s\nДоля платформы: %s SOL",
		profit.AmountSOL.StringFixedBank(4),
		owner.DisplayName(),
		profit.AdminShareSOL.StringFixedBank(4),
	)
	if err := s.notifier.Notify(ctx, s.adminChatID, adminText); err != nil {
		s.log.Error("failed to notify admin chat about deposit", slog.Any("error", err))
	}
}
