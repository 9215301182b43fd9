package workflow

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moonforge/worker-bot/internal/domain"
)

// User-facing texts. The bot speaks Russian; logs stay in English.
const (
	msgWelcome = "👋 Добро пожаловать в партнёрскую программу MoonForge!\n\n" +
		"Ответьте на пару вопросов, и мы рассмотрим вашу заявку.\n\n" +
		"Откуда льёте трафик?"
	msgAskHours      = "⏰ Сколько часов в день готовы уделять работе?"
	msgAskExperience = "📈 Какой у вас опыт в арбитраже трафика?"
	msgApplicationSent = "✅ Заявка отправлена!\n\n" +
		"Администратор рассмотрит её в ближайшее время, вы получите уведомление."
	msgPendingReview = "⏳ Ваша заявка на рассмотрении. Ожидайте решения администратора."
	msgBanned        = "🚫 Ваша заявка отклонена."
	msgApprovedNotice = "🎉 Вы приняты в партнёрскую программу!\n\n" +
		"Теперь вам доступны личные поддомены и вывод средств."
	msgUnbannedNotice = "✅ Доступ восстановлен. Добро пожаловать обратно!"
	msgMainMenu       = "🏠 Главное меню"

	msgAskSubdomain = "🌐 Отправьте желаемый поддомен.\n\n" +
		"Только латинские буквы, цифры и дефис, минимум 3 символа."
	msgSubdomainTooShort = "⚠️ Слишком короткое имя. Минимум 3 символа, только [a-z0-9-]. Попробуйте ещё раз."
	msgSubdomainTaken    = "⚠️ Этот поддомен уже занят. Отправьте другой вариант."

	msgWithdrawMinimum = "⚠️ Минимальная сумма вывода — 0.1 SOL."
	msgWithdrawPending = "⚠️ У вас уже есть активная заявка на вывод. Дождитесь её обработки."
	msgAskWallet       = "💳 Отправьте адрес вашего Solana-кошелька."
	msgWalletInvalid   = "⚠️ Это не похоже на адрес Solana-кошелька. Проверьте и отправьте ещё раз."

	msgWithdrawalApproved = "✅ Ваша заявка на вывод одобрена. Перевод будет выполнен в ближайшее время."
	msgWithdrawalRejected = "❌ Ваша заявка на вывод отклонена. Баланс не изменён."
	msgWithdrawalPaid     = "💸 Выплата выполнена. Проверьте кошелёк!"

	msgNotAllowed = "⛔ Недостаточно прав"
	msgTryLater   = "Произошла ошибка. Попробуйте позже"
)

func fmtSOL(v decimal.Decimal) string {
	return v.StringFixedBank(4) + " SOL"
}

func applicationSummary(w *domain.Worker) string {
	var b strings.Builder
	b.WriteString("📥 Новая заявка\n\n")
	fmt.Fprintf(&b, "Имя: %s\n", w.DisplayName())
	fmt.Fprintf(&b, "Telegram ID: %d\n", w.TelegramID)
	fmt.Fprintf(&b, "Трафик: %s\n", w.TrafficType)
	fmt.Fprintf(&b, "Часов в день: %s\n", w.HoursPerDay)
	fmt.Fprintf(&b, "Опыт: %s", w.Experience)
	return b.String()
}

func subdomainClaimed(fqdn string) string {
	return fmt.Sprintf("✅ Поддомен закреплён за вами:\n\nhttps://%s", fqdn)
}

func withdrawalCreated(amount decimal.Decimal) string {
	return fmt.Sprintf("✅ Заявка на вывод %s создана. Ожидайте подтверждения администратора.", fmtSOL(amount))
}

func withdrawalSummary(req *domain.WithdrawalRequest, w *domain.Worker) string {
	var b strings.Builder
	b.WriteString("💰 Заявка на вывод\n\n")
	fmt.Fprintf(&b, "Партнёр: %s (ID %d)\n", w.DisplayName(), w.TelegramID)
	fmt.Fprintf(&b, "Сумма: %s\n", fmtSOL(req.AmountSOL))
	fmt.Fprintf(&b, "Кошелёк: %s", req.WalletAddress)
	return b.String()
}

func profileText(w *domain.Worker, domains []*domain.WorkerDomain, earned decimal.Decimal, zone string) string {
	var b strings.Builder
	b.WriteString("👤 Профиль\n\n")
	fmt.Fprintf(&b, "Статус: %s\n", statusGlyph(w.Status))
	fmt.Fprintf(&b, "Баланс: %s\n", fmtSOL(w.BalanceSOL))
	fmt.Fprintf(&b, "Заработано всего: %s\n", fmtSOL(earned))

	if len(domains) == 0 {
		b.WriteString("\nПоддомены: нет")
		return b.String()
	}

	b.WriteString("\nПоддомены:\n")
	for _, d := range domains {
		marker := "🔹"
		if !d.IsActive {
			marker = "▫️"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, d.FQDN(zone))
	}

	return strings.TrimRight(b.String(), "\n")
}

func statusGlyph(status domain.WorkerStatus) string {
	switch status {
	case domain.StatusApproved:
		return "✅ активен"
	case domain.StatusPending:
		return "⏳ на рассмотрении"
	case domain.StatusBanned:
		return "🚫 заблокирован"
	default:
		return string(status)
	}
}
