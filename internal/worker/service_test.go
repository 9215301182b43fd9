package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/workercache"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Worker, error) {
	args := m.Called(ctx, telegramID)
	if w := args.Get(0); w != nil {
		return w.(*domain.Worker), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*domain.Worker, error) {
	args := m.Called(ctx, id)
	if w := args.Get(0); w != nil {
		return w.(*domain.Worker), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, w *domain.Worker) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockRepo) UpdateStep(ctx context.Context, telegramID int64, step state.Step) error {
	return m.Called(ctx, telegramID, step).Error(0)
}

func (m *mockRepo) SaveTrafficType(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockRepo) SaveHours(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockRepo) SaveExperience(ctx context.Context, telegramID int64, value string, next state.Step) error {
	return m.Called(ctx, telegramID, value, next).Error(0)
}

func (m *mockRepo) Approve(ctx context.Context, telegramID, approvedBy int64) error {
	return m.Called(ctx, telegramID, approvedBy).Error(0)
}

func (m *mockRepo) Ban(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *mockRepo) Unban(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *mockRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Worker, int, error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Worker), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockRepo) ResetStaleSteps(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func newService(repo *mockRepo) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, workercache.NewCache(nil), log)
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	repo := &mockRepo{}
	existing := &domain.Worker{ID: 1, TelegramID: 42, Status: domain.StatusApproved}
	repo.On("FindByTelegramID", mock.Anything, int64(42)).Return(existing, nil)

	w, err := newService(repo).GetOrCreate(context.Background(), Identity{TelegramID: 42})
	require.NoError(t, err)
	assert.Same(t, existing, w)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateCreatesNewProfile(t *testing.T) {
	repo := &mockRepo{}
	repo.On("FindByTelegramID", mock.Anything, int64(42)).Return(nil, repository.ErrWorkerNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(w *domain.Worker) bool {
		return w.TelegramID == 42 &&
			w.Status == domain.StatusPending &&
			w.Step == string(state.StepIdle) &&
			w.BalanceSOL.IsZero()
	})).Return(nil)

	w, err := newService(repo).GetOrCreate(context.Background(), Identity{
		TelegramID: 42,
		FirstName:  "Ivan",
		Username:   "ivan",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ivan", w.FirstName)
	repo.AssertExpectations(t)
}

func TestGetOrCreateRejectsEmptySender(t *testing.T) {
	_, err := newService(&mockRepo{}).GetOrCreate(context.Background(), Identity{})
	assert.Error(t, err)
}

func TestGetSurfacesNotFound(t *testing.T) {
	repo := &mockRepo{}
	repo.On("FindByTelegramID", mock.Anything, int64(7)).Return(nil, repository.ErrWorkerNotFound)

	_, err := newService(repo).Get(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrWorkerNotFound)
}
