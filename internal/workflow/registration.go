package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
)

// Option is one button of a closed registration menu. Key travels in the
// callback payload, Label is what the worker sees and what gets persisted.
type Option struct {
	Key   string
	Label string
}

// The registration menus are closed sets: any payload outside them is a
// stale or forged button and is dropped without a reply.
var (
	TrafficOptions = []Option{
		{Key: "instagram", Label: "Instagram"},
		{Key: "tiktok", Label: "TikTok"},
		{Key: "youtube", Label: "YouTube"},
		{Key: "telegram", Label: "Telegram"},
		{Key: "other", Label: "Другое"},
	}

	HoursOptions = []Option{
		{Key: "1_2", Label: "1-2 часа"},
		{Key: "3_5", Label: "3-5 часов"},
		{Key: "6_8", Label: "6-8 часов"},
		{Key: "8_plus", Label: "Более 8 часов"},
	}

	ExperienceOptions = []Option{
		{Key: "none", Label: "Нет опыта"},
		{Key: "under_6m", Label: "До 6 месяцев"},
		{Key: "under_1y", Label: "6-12 месяцев"},
		{Key: "over_1y", Label: "Более года"},
	}
)

func optionLabel(options []Option, key string) (string, bool) {
	for _, opt := range options {
		if opt.Key == key {
			return opt.Label, true
		}
	}
	return "", false
}

func (e *Engine) chooseTraffic(ctx context.Context, actor Actor, key string, origin MessageRef) ([]Command, error) {
	label, ok := optionLabel(TrafficOptions, key)
	if !ok {
		return []Command{answer("")}, nil
	}

	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if !state.IsTransitionAllowed(state.Step(w.Step), state.StepAwaitingHours) {
			return []Command{answer("")}, nil
		}

		if err := e.workers.SaveTrafficType(ctx, actor.ID, label, state.StepAwaitingHours); err != nil {
			return nil, fmt.Errorf("save traffic type: %w", err)
		}
		e.afterStep(ctx, actor.ID, state.Step(w.Step), state.StepAwaitingHours)

		return []Command{
			answer(""),
			edit(origin, msgAskHours, Keyboard{Kind: KeyboardHours}),
		}, nil
	})
}

func (e *Engine) chooseHours(ctx context.Context, actor Actor, key string, origin MessageRef) ([]Command, error) {
	label, ok := optionLabel(HoursOptions, key)
	if !ok {
		return []Command{answer("")}, nil
	}

	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if !state.IsTransitionAllowed(state.Step(w.Step), state.StepAwaitingExperience) {
			return []Command{answer("")}, nil
		}

		if err := e.workers.SaveHours(ctx, actor.ID, label, state.StepAwaitingExperience); err != nil {
			return nil, fmt.Errorf("save hours: %w", err)
		}
		e.afterStep(ctx, actor.ID, state.Step(w.Step), state.StepAwaitingExperience)

		return []Command{
			answer(""),
			edit(origin, msgAskExperience, Keyboard{Kind: KeyboardExperience}),
		}, nil
	})
}

// chooseExperience closes the questionnaire: the application flips to pending
// review, the applicant gets an acknowledgement and the admin channel gets the
// summary with approve/reject buttons.
func (e *Engine) chooseExperience(ctx context.Context, actor Actor, key string, origin MessageRef) ([]Command, error) {
	label, ok := optionLabel(ExperienceOptions, key)
	if !ok {
		return []Command{answer("")}, nil
	}

	return e.withLock(ctx, actor.ID, func() ([]Command, error) {
		w, err := e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		if !state.IsTransitionAllowed(state.Step(w.Step), state.StepPendingReview) {
			return []Command{answer("")}, nil
		}

		if err := e.workers.SaveExperience(ctx, actor.ID, label, state.StepPendingReview); err != nil {
			return nil, fmt.Errorf("save experience: %w", err)
		}
		e.afterStep(ctx, actor.ID, state.Step(w.Step), state.StepPendingReview)

		w, err = e.service.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}

		e.log.Info("application submitted",
			slog.Int64("telegram_id", actor.ID),
			slog.String("traffic_type", w.TrafficType),
		)

		return []Command{
			answer(""),
			edit(origin, msgApplicationSent, Keyboard{}),
			sendWithKeyboard(e.adminChatID, applicationSummary(w), Keyboard{Kind: KeyboardReview, Ref: actor.ID}),
		}, nil
	})
}

// reviewApplication resolves a pending application from the admin channel.
// Re-pressing a spent button answers politely and mutates nothing.
func (e *Engine) reviewApplication(ctx context.Context, actor Actor, rawID string, approve bool, origin MessageRef) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{alert(msgNotAllowed)}, nil
	}

	targetID, ok := parseID(rawID)
	if !ok {
		return []Command{answer("")}, nil
	}

	return e.withLock(ctx, targetID, func() ([]Command, error) {
		w, err := e.workers.FindByTelegramID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrWorkerNotFound) {
				return []Command{alert("Воркер не найден")}, nil
			}
			return nil, err
		}

		if approve {
			return e.approveWorker(ctx, actor, w, origin)
		}
		return e.rejectWorker(ctx, actor, w, origin)
	})
}

func (e *Engine) approveWorker(ctx context.Context, actor Actor, w *domain.Worker, origin MessageRef) ([]Command, error) {
	switch w.Status {
	case domain.StatusApproved:
		return []Command{answer("Воркер уже одобрен")}, nil
	case domain.StatusBanned:
		return []Command{alert("Воркер забанен, сначала разбаньте его")}, nil
	}

	if err := e.workers.Approve(ctx, w.TelegramID, actor.ID); err != nil {
		return nil, fmt.Errorf("approve worker: %w", err)
	}
	e.afterStep(ctx, w.TelegramID, state.Step(w.Step), state.StepCompleted)

	e.log.Info("worker approved",
		slog.Int64("telegram_id", w.TelegramID),
		slog.Int64("approved_by", actor.ID),
	)

	return []Command{
		answer("Одобрено"),
		edit(origin, applicationSummary(w)+"\n\n✅ Одобрено: "+actor.DisplayName(), Keyboard{}),
		sendWithKeyboard(w.TelegramID, msgApprovedNotice, Keyboard{Kind: KeyboardMain}),
	}, nil
}

func (e *Engine) rejectWorker(ctx context.Context, actor Actor, w *domain.Worker, origin MessageRef) ([]Command, error) {
	switch w.Status {
	case domain.StatusApproved:
		return []Command{alert("Воркер уже одобрен")}, nil
	case domain.StatusBanned:
		return []Command{answer("Заявка уже отклонена")}, nil
	}

	if err := e.workers.Ban(ctx, w.TelegramID); err != nil {
		return nil, fmt.Errorf("reject worker: %w", err)
	}
	e.afterStep(ctx, w.TelegramID, state.Step(w.Step), state.StepBanned)

	e.log.Info("worker application rejected",
		slog.Int64("telegram_id", w.TelegramID),
		slog.Int64("rejected_by", actor.ID),
	)

	return []Command{
		answer("Отклонено"),
		edit(origin, applicationSummary(w)+"\n\n❌ Отклонено: "+actor.DisplayName(), Keyboard{}),
		send(w.TelegramID, msgBanned),
	}, nil
}

// afterStep drops the cached profile and records the transition for metrics.
func (e *Engine) afterStep(ctx context.Context, telegramID int64, from, to state.Step) {
	e.service.Invalidate(ctx, telegramID)
	state.RecordTransition(from, to)
}
