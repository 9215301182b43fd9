package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/worker"
)

// Callback payload tags. Dispatch is by prefix; longer prefixes are matched
// before their shorter cousins (reject_wd_ before reject_).
const (
	CallbackProfile   = "profile"
	CallbackAddDomain = "add_domain"
	CallbackWithdraw  = "withdraw"
	CallbackMenu      = "menu"
	CallbackBackMenu  = "back_menu"

	PrefixTraffic          = "traffic_"
	PrefixHours            = "hours_"
	PrefixExperience       = "exp_"
	PrefixApprove          = "approve_"
	PrefixReject           = "reject_"
	PrefixPayout           = "payout_"
	PrefixRejectWithdrawal = "reject_wd_"
	PrefixPaid             = "paid_"
	PrefixWorkersPage      = "workers_page_"
)

// PriceSource supplies a cached SOL/USD quote for informational output.
type PriceSource interface {
	CachedUSD(ctx context.Context) (decimal.Decimal, bool)
}

// Engine applies workflow events to worker state and emits outbound commands.
// All methods are safe for concurrent use; per-worker serialization happens
// through the injected Locker.
type Engine struct {
	workers     repository.WorkerRepository
	domains     repository.DomainRepository
	profits     repository.ProfitRepository
	withdrawals repository.WithdrawalRepository
	service     *worker.Service
	locker      *state.Locker
	prices      PriceSource
	admins      map[int64]struct{}
	adminChatID int64
	zone        string
	log         *slog.Logger
}

// Config collects the engine's dependencies.
type Config struct {
	Workers     repository.WorkerRepository
	Domains     repository.DomainRepository
	Profits     repository.ProfitRepository
	Withdrawals repository.WithdrawalRepository
	Service     *worker.Service
	Locker      *state.Locker
	Prices      PriceSource
	AdminIDs    map[int64]struct{}
	AdminChatID int64
	Zone        string
	Log         *slog.Logger
}

// NewEngine builds a workflow engine. The admin allow-list is injected here,
// never read from package state.
func NewEngine(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		workers:     cfg.Workers,
		domains:     cfg.Domains,
		profits:     cfg.Profits,
		withdrawals: cfg.Withdrawals,
		service:     cfg.Service,
		locker:      cfg.Locker,
		prices:      cfg.Prices,
		admins:      cfg.AdminIDs,
		adminChatID: cfg.AdminChatID,
		zone:        cfg.Zone,
		log:         log,
	}
}

// IsAdmin reports whether the principal is in the admin allow-list.
func (e *Engine) IsAdmin(principalID int64) bool {
	_, ok := e.admins[principalID]
	return ok
}

// Start handles /start: the worker row is created on first contact, and the
// reply depends on where in the workflow the worker currently is.
func (e *Engine) Start(ctx context.Context, actor Actor) ([]Command, error) {
	w, err := e.service.GetOrCreate(ctx, worker.Identity{
		TelegramID: actor.ID,
		FirstName:  actor.FirstName,
		LastName:   actor.LastName,
		Username:   actor.Username,
	})
	if err != nil {
		return nil, err
	}

	switch w.Status {
	case domain.StatusApproved:
		return []Command{sendWithKeyboard(actor.ChatID, msgMainMenu, Keyboard{Kind: KeyboardMain})}, nil
	case domain.StatusBanned:
		return []Command{send(actor.ChatID, msgBanned)}, nil
	}

	switch state.Step(w.Step) {
	case state.StepIdle:
		if err := e.transition(ctx, actor.ID, state.Step(w.Step), state.StepAwaitingTraffic); err != nil {
			return nil, err
		}
		return []Command{sendWithKeyboard(actor.ChatID, msgWelcome, Keyboard{Kind: KeyboardTraffic})}, nil
	case state.StepAwaitingTraffic:
		return []Command{sendWithKeyboard(actor.ChatID, msgWelcome, Keyboard{Kind: KeyboardTraffic})}, nil
	case state.StepAwaitingHours:
		return []Command{sendWithKeyboard(actor.ChatID, msgAskHours, Keyboard{Kind: KeyboardHours})}, nil
	case state.StepAwaitingExperience:
		return []Command{sendWithKeyboard(actor.ChatID, msgAskExperience, Keyboard{Kind: KeyboardExperience})}, nil
	default:
		return []Command{send(actor.ChatID, msgPendingReview)}, nil
	}
}

// Callback dispatches an inline button press by payload prefix. Unknown
// payloads only dismiss the spinner: forward compatibility, not an error.
func (e *Engine) Callback(ctx context.Context, actor Actor, data string, origin MessageRef) ([]Command, error) {
	data = strings.TrimSpace(data)

	switch data {
	case CallbackProfile:
		return e.profile(ctx, actor)
	case CallbackAddDomain:
		return e.enterDomainClaim(ctx, actor)
	case CallbackWithdraw:
		return e.enterWithdrawal(ctx, actor)
	case CallbackMenu, CallbackBackMenu:
		return e.mainMenu(ctx, actor)
	}

	// Longest prefixes first: reject_wd_ shadows reject_, workers_page_ is admin paging.
	switch {
	case strings.HasPrefix(data, PrefixRejectWithdrawal):
		return e.resolveWithdrawal(ctx, actor, strings.TrimPrefix(data, PrefixRejectWithdrawal), withdrawalActionReject, origin)
	case strings.HasPrefix(data, PrefixWorkersPage):
		return e.workersPage(ctx, actor, strings.TrimPrefix(data, PrefixWorkersPage), origin)
	case strings.HasPrefix(data, PrefixTraffic):
		return e.chooseTraffic(ctx, actor, strings.TrimPrefix(data, PrefixTraffic), origin)
	case strings.HasPrefix(data, PrefixHours):
		return e.chooseHours(ctx, actor, strings.TrimPrefix(data, PrefixHours), origin)
	case strings.HasPrefix(data, PrefixExperience):
		return e.chooseExperience(ctx, actor, strings.TrimPrefix(data, PrefixExperience), origin)
	case strings.HasPrefix(data, PrefixApprove):
		return e.reviewApplication(ctx, actor, strings.TrimPrefix(data, PrefixApprove), true, origin)
	case strings.HasPrefix(data, PrefixReject):
		return e.reviewApplication(ctx, actor, strings.TrimPrefix(data, PrefixReject), false, origin)
	case strings.HasPrefix(data, PrefixPayout):
		return e.resolveWithdrawal(ctx, actor, strings.TrimPrefix(data, PrefixPayout), withdrawalActionApprove, origin)
	case strings.HasPrefix(data, PrefixPaid):
		return e.resolveWithdrawal(ctx, actor, strings.TrimPrefix(data, PrefixPaid), withdrawalActionPaid, origin)
	}

	e.log.Info("ignoring unknown callback payload", slog.String("data", data))
	return []Command{answer("")}, nil
}

// FallbackText handles free text outside a waiting step.
func (e *Engine) FallbackText(ctx context.Context, actor Actor) ([]Command, error) {
	w, err := e.service.Get(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkerNotFound) {
			return nil, nil
		}
		return nil, err
	}

	switch w.Status {
	case domain.StatusApproved:
		return []Command{sendWithKeyboard(actor.ChatID, msgMainMenu, Keyboard{Kind: KeyboardMain})}, nil
	case domain.StatusBanned:
		return []Command{send(actor.ChatID, msgBanned)}, nil
	default:
		if state.Step(w.Step) == state.StepPendingReview {
			return []Command{send(actor.ChatID, msgPendingReview)}, nil
		}
		return nil, nil
	}
}

func (e *Engine) mainMenu(ctx context.Context, actor Actor) ([]Command, error) {
	w, err := e.service.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if !w.IsApproved() {
		return []Command{notApprovedNotice(w)}, nil
	}

	return []Command{
		answer(""),
		sendWithKeyboard(actor.ChatID, msgMainMenu, Keyboard{Kind: KeyboardMain}),
	}, nil
}

// notApprovedNotice picks the callback answer for a worker who has not
// passed review. Banned workers see the rejection text, not the pending one.
func notApprovedNotice(w *domain.Worker) Command {
	if w.Status == domain.StatusBanned {
		return answer(msgBanned)
	}
	return answer(msgPendingReview)
}

// transition validates the step change against the transition table, persists
// it, and records it for metrics. Disallowed transitions come back as
// state.ErrInvalidTransition; callers decide whether that is a user-visible
// condition or a silently ignored stale button press.
func (e *Engine) transition(ctx context.Context, telegramID int64, from, to state.Step) error {
	if !state.IsTransitionAllowed(from, to) {
		e.log.Warn("invalid workflow transition",
			slog.Int64("telegram_id", telegramID),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return state.ErrInvalidTransition
	}

	if err := e.workers.UpdateStep(ctx, telegramID, to); err != nil {
		return err
	}

	e.service.Invalidate(ctx, telegramID)
	state.RecordTransition(from, to)
	return nil
}

// withLock serializes a check-then-act sequence for a single worker.
func (e *Engine) withLock(ctx context.Context, workerTelegramID int64, fn func() ([]Command, error)) ([]Command, error) {
	if err := e.locker.Acquire(ctx, workerTelegramID); err != nil {
		if errors.Is(err, state.ErrLocked) {
			return []Command{answer("⏳ Подождите, предыдущий запрос ещё обрабатывается")}, nil
		}
		return nil, err
	}
	defer e.locker.Release(ctx, workerTelegramID)

	return fn()
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
