package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/state"
)

type mockWorkerRepo struct {
	mock.Mock
}

func (m *mockWorkerRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Worker, error) {
	args := m.Called(ctx, telegramID)
	if w := args.Get(0); w != nil {
		return w.(*domain.Worker), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkerRepo) FindByID(ctx context.Context, id int64) (*domain.Worker, error) {
	args := m.Called(ctx, id)
	if w := args.Get(0); w != nil {
		return w.(*domain.Worker), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkerRepo) Create(ctx context.Context, worker *domain.Worker) error {
	return m.Called(ctx, worker).Error(0)
}

func (m *mockWorkerRepo) UpdateStep(ctx context.Context, telegramID int64, step state.Step) error {
	return m.Called(ctx, telegramID, step).Error(0)
}

func (m *mockWorkerRepo) SaveTrafficType(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockWorkerRepo) SaveHours(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockWorkerRepo) SaveExperience(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockWorkerRepo) Approve(ctx context.Context, telegramID, approvedBy int64) error {
	return m.Called(ctx, telegramID, approvedBy).Error(0)
}

func (m *mockWorkerRepo) Ban(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *mockWorkerRepo) Unban(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *mockWorkerRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if counts := args.Get(0); counts != nil {
		return counts.(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkerRepo) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Worker, int, error) {
	args := m.Called(ctx, limit, offset)
	if workers := args.Get(0); workers != nil {
		return workers.([]*domain.Worker), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockWorkerRepo) ResetStaleSteps(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockDomainRepo struct {
	mock.Mock
}

func (m *mockDomainRepo) Create(ctx context.Context, d *domain.WorkerDomain) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDomainRepo) ListByWorker(ctx context.Context, workerID int64) ([]*domain.WorkerDomain, error) {
	args := m.Called(ctx, workerID)
	if domains := args.Get(0); domains != nil {
		return domains.([]*domain.WorkerDomain), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDomainRepo) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.WorkerDomain, error) {
	args := m.Called(ctx, subdomain)
	if d := args.Get(0); d != nil {
		return d.(*domain.WorkerDomain), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfitRepo struct {
	mock.Mock
}

func (m *mockProfitRepo) Record(ctx context.Context, p *domain.Profit) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfitRepo) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *mockProfitRepo) SumByWorker(ctx context.Context, workerID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockWithdrawalRepo struct {
	mock.Mock
}

func (m *mockWithdrawalRepo) Create(ctx context.Context, req *domain.WithdrawalRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockWithdrawalRepo) FindByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if req := args.Get(0); req != nil {
		return req.(*domain.WithdrawalRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWithdrawalRepo) HasPending(ctx context.Context, workerID int64) (bool, error) {
	args := m.Called(ctx, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockWithdrawalRepo) Approve(ctx context.Context, id, resolvedBy int64) error {
	return m.Called(ctx, id, resolvedBy).Error(0)
}

func (m *mockWithdrawalRepo) Reject(ctx context.Context, id, resolvedBy int64) error {
	return m.Called(ctx, id, resolvedBy).Error(0)
}

func (m *mockWithdrawalRepo) MarkPaid(ctx context.Context, id, resolvedBy int64) error {
	return m.Called(ctx, id, resolvedBy).Error(0)
}

func (m *mockWithdrawalRepo) SumPending(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
