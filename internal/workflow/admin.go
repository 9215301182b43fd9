package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
)

const workersPageSize = 10

// AdminStats renders the aggregate dashboard: worker counts, recorded profit,
// the platform share and the pending withdrawal backlog. Read-only.
func (e *Engine) AdminStats(ctx context.Context, actor Actor) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{send(actor.ChatID, msgNotAllowed)}, nil
	}

	counts, err := e.workers.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count workers: %w", err)
	}

	totalSOL, adminSOL, err := e.profits.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("profit totals: %w", err)
	}

	pendingSOL, err := e.withdrawals.SumPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending withdrawals: %w", err)
	}

	var b strings.Builder
	b.WriteString("📊 Статистика\n\n")
	fmt.Fprintf(&b, "Воркеров одобрено: %d\n", counts[string(domain.StatusApproved)])
	fmt.Fprintf(&b, "Заявок на рассмотрении: %d\n", counts[string(domain.StatusPending)])
	fmt.Fprintf(&b, "Забанено: %d\n\n", counts[string(domain.StatusBanned)])
	fmt.Fprintf(&b, "Профит всего: %s\n", fmtSOL(totalSOL))
	fmt.Fprintf(&b, "Доля платформы: %s\n", fmtSOL(adminSOL))
	fmt.Fprintf(&b, "В очереди на вывод: %s", fmtSOL(pendingSOL))

	if e.prices != nil {
		if usd, ok := e.prices.CachedUSD(ctx); ok && usd.IsPositive() {
			fmt.Fprintf(&b, "\n\nПрофит в USD: $%s (курс $%s)",
				totalSOL.Mul(usd).StringFixedBank(2), usd.StringFixedBank(2))
		}
	}

	return []Command{send(actor.ChatID, b.String())}, nil
}

// AdminWorkers renders the first page of the recent-workers listing.
func (e *Engine) AdminWorkers(ctx context.Context, actor Actor) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{send(actor.ChatID, msgNotAllowed)}, nil
	}

	text, kb, err := e.renderWorkersPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	return []Command{sendWithKeyboard(actor.ChatID, text, kb)}, nil
}

// workersPage flips the listing message to another page in place.
func (e *Engine) workersPage(ctx context.Context, actor Actor, rawPage string, origin MessageRef) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{alert(msgNotAllowed)}, nil
	}

	page, ok := parseID(rawPage)
	if !ok {
		return []Command{answer("")}, nil
	}

	text, kb, err := e.renderWorkersPage(ctx, int(page))
	if err != nil {
		return nil, err
	}

	return []Command{
		answer(""),
		edit(origin, text, kb),
	}, nil
}

func (e *Engine) renderWorkersPage(ctx context.Context, page int) (string, Keyboard, error) {
	if page < 1 {
		page = 1
	}

	workers, total, err := e.workers.ListRecent(ctx, workersPageSize, (page-1)*workersPageSize)
	if err != nil {
		return "", Keyboard{}, fmt.Errorf("list workers: %w", err)
	}

	totalPages := (total + workersPageSize - 1) / workersPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Воркеры (%d)\n\n", total)
	if len(workers) == 0 {
		b.WriteString("Пока никого нет.")
	}
	for _, w := range workers {
		fmt.Fprintf(&b, "%s %s — %s\n", statusGlyph(w.Status), w.DisplayName(), fmtSOL(w.BalanceSOL))
	}

	kb := Keyboard{}
	if totalPages > 1 {
		kb = Keyboard{Kind: KeyboardWorkersPage, Page: page, TotalPages: totalPages}
	}

	return strings.TrimRight(b.String(), "\n"), kb, nil
}

// AdminUnban handles `/unban <telegram id>`: a banned worker returns to the
// approved pool with a restored main menu.
func (e *Engine) AdminUnban(ctx context.Context, actor Actor, rawID string) ([]Command, error) {
	if !e.IsAdmin(actor.ID) {
		return []Command{send(actor.ChatID, msgNotAllowed)}, nil
	}

	targetID, ok := parseID(rawID)
	if !ok {
		return []Command{send(actor.ChatID, "Использование: /unban <telegram id>")}, nil
	}

	return e.withLock(ctx, targetID, func() ([]Command, error) {
		if err := e.workers.Unban(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrWorkerNotFound) {
				return []Command{send(actor.ChatID, "Забаненный воркер с таким id не найден")}, nil
			}
			return nil, fmt.Errorf("unban worker: %w", err)
		}
		e.service.Invalidate(ctx, targetID)

		return []Command{
			send(actor.ChatID, fmt.Sprintf("Воркер %d разбанен", targetID)),
			sendWithKeyboard(targetID, msgUnbannedNotice, Keyboard{Kind: KeyboardMain}),
		}, nil
	})
}
