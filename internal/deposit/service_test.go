package deposit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
)

type mockWorkerStore struct {
	mock.Mock
}

func (m *mockWorkerStore) FindByID(ctx context.Context, id int64) (*domain.Worker, error) {
	args := m.Called(ctx, id)
	if w := args.Get(0); w != nil {
		return w.(*domain.Worker), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDomainStore struct {
	mock.Mock
}

func (m *mockDomainStore) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.WorkerDomain, error) {
	args := m.Called(ctx, subdomain)
	if d := args.Get(0); d != nil {
		return d.(*domain.WorkerDomain), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfitStore struct {
	mock.Mock
}

func (m *mockProfitStore) Record(ctx context.Context, p *domain.Profit) error {
	return m.Called(ctx, p).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}

type depositFixture struct {
	workers  *mockWorkerStore
	domains  *mockDomainStore
	profits  *mockProfitStore
	notifier *mockNotifier
	service  *Service
}

func newDepositFixture(t *testing.T) *depositFixture {
	t.Helper()

	workers := &mockWorkerStore{}
	domains := &mockDomainStore{}
	profits := &mockProfitStore{}
	notifier := &mockNotifier{}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(workers, domains, profits, notifier, nil, -100500, log)

	return &depositFixture{
		workers:  workers,
		domains:  domains,
		profits:  profits,
		notifier: notifier,
		service:  service,
	}
}

func notification(amount string) Notification {
	return Notification{
		TxSignature:   "5KtP9signature",
		Subdomain:     "alpha",
		AmountSOL:     decimal.RequireFromString(amount),
		SenderAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	}
}

func shareMatcher(workerShare, adminShare string) any {
	return mock.MatchedBy(func(p *domain.Profit) bool {
		return p.WorkerShareSOL.Equal(decimal.RequireFromString(workerShare)) &&
			p.AdminShareSOL.Equal(decimal.RequireFromString(adminShare)) &&
			p.TxSignature == "5KtP9signature"
	})
}

func TestProcessSplitsAndCredits(t *testing.T) {
	f := newDepositFixture(t)
	ctx := context.Background()

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100, Username: "ivan"}

	f.domains.On("FindActiveBySubdomain", ctx, "alpha").Return(claimed, nil).Once()
	f.workers.On("FindByID", ctx, int64(55)).Return(owner, nil).Once()
	f.profits.On("Record", ctx, shareMatcher("2", "0.5")).Return(nil).Once()
	f.notifier.On("Notify", ctx, int64(100), mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", ctx, int64(-100500), mock.Anything).Return(nil).Once()

	profit, err := f.service.Process(ctx, notification("2.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(55), profit.WorkerID)
	f.profits.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestProcessDuplicateTransaction(t *testing.T) {
	f := newDepositFixture(t)
	ctx := context.Background()

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100}

	f.domains.On("FindActiveBySubdomain", ctx, "alpha").Return(claimed, nil).Once()
	f.workers.On("FindByID", ctx, int64(55)).Return(owner, nil).Once()
	f.profits.On("Record", ctx, mock.Anything).Return(repository.ErrDuplicateTransaction).Once()

	_, err := f.service.Process(ctx, notification("2.5"))
	assert.ErrorIs(t, err, ErrDuplicateDeposit)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessRetryAfterTransientFailureCredits(t *testing.T) {
	// A failed delivery rolls the whole deposit back, so the watcher's retry
	// must land as a fresh recording, not as a duplicate that drops the credit.
	f := newDepositFixture(t)
	ctx := context.Background()

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100}

	f.domains.On("FindActiveBySubdomain", ctx, "alpha").Return(claimed, nil).Twice()
	f.workers.On("FindByID", ctx, int64(55)).Return(owner, nil).Twice()
	f.profits.On("Record", ctx, mock.Anything).Return(errors.New("connection reset")).Once()
	f.profits.On("Record", ctx, shareMatcher("0.8", "0.2")).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Process(ctx, notification("1"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateDeposit)

	profit, err := f.service.Process(ctx, notification("1"))
	require.NoError(t, err)
	assert.True(t, profit.WorkerShareSOL.Equal(decimal.RequireFromString("0.8")))
	f.profits.AssertExpectations(t)
}

func TestProcessUnknownSubdomain(t *testing.T) {
	f := newDepositFixture(t)
	ctx := context.Background()

	f.domains.On("FindActiveBySubdomain", ctx, "alpha").
		Return(nil, repository.ErrDomainNotFound).Once()

	_, err := f.service.Process(ctx, notification("2.5"))
	assert.ErrorIs(t, err, ErrUnknownSubdomain)
}

func TestProcessRejectsNonPositiveAmount(t *testing.T) {
	f := newDepositFixture(t)

	_, err := f.service.Process(context.Background(), notification("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	f.domains.AssertNotCalled(t, "FindActiveBySubdomain", mock.Anything, mock.Anything)
}

func TestProcessNormalizesSubdomainTag(t *testing.T) {
	f := newDepositFixture(t)
	ctx := context.Background()

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100}

	f.domains.On("FindActiveBySubdomain", ctx, "alpha").Return(claimed, nil).Once()
	f.workers.On("FindByID", ctx, int64(55)).Return(owner, nil).Once()
	f.profits.On("Record", ctx, mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	n := notification("1")
	n.Subdomain = "ALPHA"

	_, err := f.service.Process(ctx, n)
	require.NoError(t, err)
	f.domains.AssertExpectations(t)
}
