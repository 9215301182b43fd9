package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/pkg/metrics"
)

type withdrawalAction int

const (
	withdrawalActionApprove withdrawalAction = iota
	withdrawalActionReject
	withdrawalActionPaid
)

// enterWithdrawal checks the balance floor and the single-pending rule before
// prompting for a wallet address. Both guards leave state untouched on denial.
func (e *Engine) enterWithdrawal(ctx context.Context, actor Actor) ([]Command, error) {
	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if !w.IsApproved() {
			return []Command{notApprovedNotice(w)}, nil
		}

		if w.BalanceSOL.LessThan(domain.MinWithdrawalSOL) {
			return []Command{alert(msgWithdrawMinimum)}, nil
		}

		pending, err := e.withdrawals.HasPending(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("check pending withdrawal: %w", err)
		}
		if pending {
			return []Command{alert(msgWithdrawPending)}, nil
		}

		if err := e.transition(ctx, actor.ID, state.Step(w.Step), state.StepAwaitingWallet); err != nil {
			if errors.Is(err, state.ErrInvalidTransition) {
				return []Command{answer("")}, nil
			}
			return nil, err
		}

		return []Command{
			answer(""),
			send(actor.ChatID, msgAskWallet),
		}, nil
	})
}

// SubmitWallet handles free text while the worker is in awaiting_wallet. On
// success the current balance is snapshotted into a pending request; the
// partial unique index on pending requests backstops the HasPending guard.
func (e *Engine) SubmitWallet(ctx context.Context, actor Actor, text string) ([]Command, error) {
	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if state.Step(w.Step) != state.StepAwaitingWallet || !w.IsApproved() {
			return nil, nil
		}

		address := strings.TrimSpace(text)
		if !domain.IsValidWalletAddress(address) {
			return []Command{send(actor.ChatID, msgWalletInvalid)}, nil
		}

		req := &domain.WithdrawalRequest{
			WorkerID:      w.ID,
			AmountSOL:     w.BalanceSOL,
			WalletAddress: address,
			Status:        domain.WithdrawalPending,
			CreatedAt:     time.Now().UTC(),
		}

		if err := e.withdrawals.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrPendingWithdrawalExists) {
				if stepErr := e.transition(ctx, actor.ID, state.StepAwaitingWallet, state.StepCompleted); stepErr != nil {
					return nil, stepErr
				}
				return []Command{send(actor.ChatID, msgWithdrawPending)}, nil
			}
			return nil, fmt.Errorf("create withdrawal request: %w", err)
		}

		if err := e.transition(ctx, actor.ID, state.StepAwaitingWallet, state.StepCompleted); err != nil {
			return nil, err
		}

		e.log.Info("withdrawal requested",
			slog.Int64("telegram_id", actor.ID),
			slog.Int64("request_id", req.ID),
			slog.String("amount_sol", req.AmountSOL.String()),
		)

		return []Command{
			send(actor.ChatID, withdrawalCreated(req.AmountSOL)),
			sendWithKeyboard(e.adminChatID, withdrawalSummary(req, w), Keyboard{Kind: KeyboardWithdrawal, Ref: req.ID}),
		}, nil
	})
}

// resolveWithdrawal applies an admin decision to a withdrawal request. Each
// transition is guarded by the request's expected current status, so a
// double-pressed button answers without mutating anything twice.
func (e *Engine) resolveWithdrawal(ctx context.Context, actor Actor, rawID string, action withdrawalAction, origin MessageRef) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{alert(msgNotAllowed)}, nil
	}

	id, ok := parseID(rawID)
	if !ok {
		return []Command{answer("")}, nil
	}

	req, err := e.withdrawals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotFound) {
			return []Command{alert("Заявка на вывод не найдена")}, nil
		}
		return nil, err
	}

	w, err := e.workers.FindByID(ctx, req.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("find withdrawal owner: %w", err)
	}

	return e.withLock(ctx, w.TelegramID, func() ([]Command, error) {
		switch action {
		case withdrawalActionApprove:
			return e.approveWithdrawal(ctx, actor, req, w, origin)
		case withdrawalActionReject:
			return e.rejectWithdrawal(ctx, actor, req, w, origin)
		default:
			return e.markWithdrawalPaid(ctx, actor, req, w, origin)
		}
	})
}

// approveWithdrawal commits the funds: the repository flips the request to
// approved and zeroes the worker's balance in one transaction. The actual
// transfer is manual; the admin gets a final mark-paid button.
func (e *Engine) approveWithdrawal(ctx context.Context, actor Actor, req *domain.WithdrawalRequest, w *domain.Worker, origin MessageRef) ([]Command, error) {
	if err := e.withdrawals.Approve(ctx, req.ID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotPending) {
			return []Command{answer("Заявка уже обработана")}, nil
		}
		return nil, fmt.Errorf("approve withdrawal: %w", err)
	}
	e.service.Invalidate(ctx, w.TelegramID)
	metrics.RecordWithdrawal("approved")

	e.log.Info("withdrawal approved",
		slog.Int64("request_id", req.ID),
		slog.Int64("resolved_by", actor.ID),
		slog.String("amount_sol", req.AmountSOL.String()),
	)

	return []Command{
		answer("Выплата одобрена"),
		edit(origin, withdrawalSummary(req, w)+"\n\n✅ Одобрено: "+actor.DisplayName(), Keyboard{Kind: KeyboardMarkPaid, Ref: req.ID}),
		send(w.TelegramID, msgWithdrawalApproved),
	}, nil
}

func (e *Engine) rejectWithdrawal(ctx context.Context, actor Actor, req *domain.WithdrawalRequest, w *domain.Worker, origin MessageRef) ([]Command, error) {
	if err := e.withdrawals.Reject(ctx, req.ID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotPending) {
			return []Command{answer("Заявка уже обработана")}, nil
		}
		return nil, fmt.Errorf("reject withdrawal: %w", err)
	}
	metrics.RecordWithdrawal("rejected")

	e.log.Info("withdrawal rejected",
		slog.Int64("request_id", req.ID),
		slog.Int64("resolved_by", actor.ID),
	)

	return []Command{
		answer("Заявка отклонена"),
		edit(origin, withdrawalSummary(req, w)+"\n\n❌ Отклонено: "+actor.DisplayName(), Keyboard{}),
		send(w.TelegramID, msgWithdrawalRejected),
	}, nil
}

func (e *Engine) markWithdrawalPaid(ctx context.Context, actor Actor, req *domain.WithdrawalRequest, w *domain.Worker, origin MessageRef) ([]Command, error) {
	if err := e.withdrawals.MarkPaid(ctx, req.ID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotPending) {
			return []Command{answer("Выплата уже отмечена")}, nil
		}
		return nil, fmt.Errorf("mark withdrawal paid: %w", err)
	}
	metrics.RecordWithdrawal("paid")

	e.log.Info("withdrawal paid",
		slog.Int64("request_id", req.ID),
		slog.Int64("resolved_by", actor.ID),
	)

	return []Command{
		answer("Выплата завершена"),
		edit(origin, withdrawalSummary(req, w)+"\n\n💸 Выплачено: "+actor.DisplayName(), Keyboard{}),
		send(w.TelegramID, msgWithdrawalPaid),
	}, nil
}
