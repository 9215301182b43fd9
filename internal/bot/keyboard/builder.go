package keyboard

import (
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/workflow"
)

// Builder renders the engine's keyboard descriptors into telebot markup.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// Render maps a keyboard descriptor to concrete inline markup. A zero
// descriptor renders to nil, which telebot treats as "no keyboard".
func (b *Builder) Render(kb workflow.Keyboard) *telebot.ReplyMarkup {
	switch kb.Kind {
	case workflow.KeyboardTraffic:
		return b.optionsMenu(workflow.TrafficOptions, workflow.PrefixTraffic)
	case workflow.KeyboardHours:
		return b.optionsMenu(workflow.HoursOptions, workflow.PrefixHours)
	case workflow.KeyboardExperience:
		return b.optionsMenu(workflow.ExperienceOptions, workflow.PrefixExperience)
	case workflow.KeyboardMain:
		return b.MainMenu()
	case workflow.KeyboardReview:
		return b.refButtons(kb.Ref, "✅ Одобрить", workflow.PrefixApprove, "❌ Отклонить", workflow.PrefixReject)
	case workflow.KeyboardWithdrawal:
		return b.refButtons(kb.Ref, "✅ Выплатить", workflow.PrefixPayout, "❌ Отклонить", workflow.PrefixRejectWithdrawal)
	case workflow.KeyboardMarkPaid:
		return b.markPaidButton(kb.Ref)
	case workflow.KeyboardWorkersPage:
		return NewInlineKeyboard().
			AddRow(PaginationButtons(workflow.PrefixWorkersPage, kb.Page, kb.TotalPages)...).
			Build()
	default:
		return nil
	}
}

// MainMenu builds the approved-worker menu.
func (b *Builder) MainMenu() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "👤 Профиль", Data: workflow.CallbackProfile}).
		AddRow(InlineButton{Text: "🌐 Получить поддомен", Data: workflow.CallbackAddDomain}).
		AddRow(InlineButton{Text: "💸 Вывести средства", Data: workflow.CallbackWithdraw}).
		Build()
}

func (b *Builder) optionsMenu(options []workflow.Option, prefix string) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, opt := range options {
		kb.AddRow(InlineButton{Text: opt.Label, Data: prefix + opt.Key})
	}
	return kb.Build()
}

func (b *Builder) refButtons(ref int64, yesText, yesPrefix, noText, noPrefix string) *telebot.ReplyMarkup {
	yes, err := Payload(yesPrefix, ref)
	if err != nil {
		b.logOverflow(yesPrefix, ref, err)
		return nil
	}
	no, err := Payload(noPrefix, ref)
	if err != nil {
		b.logOverflow(noPrefix, ref, err)
		return nil
	}

	return NewInlineKeyboard().
		AddRow(
			InlineButton{Text: yesText, Data: yes},
			InlineButton{Text: noText, Data: no},
		).
		Build()
}

func (b *Builder) markPaidButton(ref int64) *telebot.ReplyMarkup {
	data, err := Payload(workflow.PrefixPaid, ref)
	if err != nil {
		b.logOverflow(workflow.PrefixPaid, ref, err)
		return nil
	}

	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "💸 Отметить выплаченным", Data: data}).
		Build()
}

func (b *Builder) logOverflow(prefix string, ref int64, err error) {
	if b.log != nil {
		b.log.Error("failed to encode callback payload",
			slog.String("prefix", prefix),
			slog.String("ref", strconv.FormatInt(ref, 10)),
			slog.Any("error", err),
		)
	}
}
