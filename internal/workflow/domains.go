package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
)

// profile renders the worker's balance, lifetime earnings and claimed
// subdomains in place of the menu message.
func (e *Engine) profile(ctx context.Context, actor Actor) ([]Command, error) {
	w, err := e.service.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if !w.IsApproved() {
		return []Command{notApprovedNotice(w)}, nil
	}

	domains, err := e.domains.ListByWorker(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list worker domains: %w", err)
	}

	earned, err := e.profits.SumByWorker(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("sum worker profits: %w", err)
	}

	return []Command{
		answer(""),
		sendWithKeyboard(actor.ChatID, profileText(w, domains, earned, e.zone), Keyboard{Kind: KeyboardMain}),
	}, nil
}

// enterDomainClaim moves an approved worker into the awaiting_domain step and
// prompts for a subdomain candidate.
func (e *Engine) enterDomainClaim(ctx context.Context, actor Actor) ([]Command, error) {
	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if !w.IsApproved() {
			return []Command{notApprovedNotice(w)}, nil
		}

		if err := e.transition(ctx, actor.ID, state.Step(w.Step), state.StepAwaitingDomain); err != nil {
			if errors.Is(err, state.ErrInvalidTransition) {
				return []Command{answer("")}, nil
			}
			return nil, err
		}

		return []Command{
			answer(""),
			send(actor.ChatID, msgAskSubdomain),
		}, nil
	})
}

// SubmitDomain handles free text while the worker is in awaiting_domain.
// Validation failures re-prompt without leaving the step; the unique index on
// subdomain is the conflict authority.
func (e *Engine) SubmitDomain(ctx context.Context, actor Actor, text string) ([]Command, error) {
	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if state.Step(w.Step) != state.StepAwaitingDomain || !w.IsApproved() {
			return nil, nil
		}

		sub := NormalizeSubdomain(text)
		if len(sub) < MinSubdomainLen {
			return []Command{send(actor.ChatID, msgSubdomainTooShort)}, nil
		}

		claimed := &domain.WorkerDomain{
			WorkerID:  w.ID,
			Subdomain: sub,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}

		if err := e.domains.Create(ctx, claimed); err != nil {
			if errors.Is(err, repository.ErrSubdomainTaken) {
				return []Command{send(actor.ChatID, msgSubdomainTaken)}, nil
			}
			return nil, fmt.Errorf("claim subdomain: %w", err)
		}

		if err := e.transition(ctx, actor.ID, state.StepAwaitingDomain, state.StepCompleted); err != nil {
			return nil, err
		}

		e.log.Info("subdomain claimed",
			slog.Int64("telegram_id", actor.ID),
			slog.String("subdomain", sub),
		)

		return []Command{
			send(actor.ChatID, subdomainClaimed(claimed.FQDN(e.zone))),
			sendWithKeyboard(actor.ChatID, msgMainMenu, Keyboard{Kind: KeyboardMain}),
		}, nil
	})
}
