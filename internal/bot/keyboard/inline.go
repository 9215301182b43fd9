package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// InlineButton is a lightweight button definition used by the builder before
// telebot markup is rendered.
type InlineButton struct {
	Text string
	Data string
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

// NewInlineKeyboard creates an empty inline keyboard builder.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: make([][]InlineButton, 0)}
}

// AddRow appends a new button row.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build renders the accumulated rows into telebot markup. Buttons whose
// payload exceeds the Telegram callback-data limit are dropped.
func (b *InlineKeyboardBuilder) Build() *telebot.ReplyMarkup {
	inlineKeyboard := make([][]telebot.InlineButton, 0, len(b.rows))
	for _, row := range b.rows {
		rendered := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			if len(btn.Data) > CallbackDataLimitBytes {
				continue
			}
			rendered = append(rendered, telebot.InlineButton{
				Text: btn.Text,
				Data: btn.Data,
			})
		}
		if len(rendered) > 0 {
			inlineKeyboard = append(inlineKeyboard, rendered)
		}
	}

	return &telebot.ReplyMarkup{InlineKeyboard: inlineKeyboard}
}
