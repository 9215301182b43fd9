package bot

import (
	"context"

	"gopkg.in/telebot.v3"
)

// Notifier sends out-of-band messages through the bot, outside of any
// update-handling context. Used by the deposit webhook to notify the
// worker and the admin chat.
type Notifier struct {
	tb *telebot.Bot
}

// NewNotifier wraps a running bot for push delivery.
func NewNotifier(tb *telebot.Bot) *Notifier {
	return &Notifier{tb: tb}
}

// Notify sends text to the given chat.
func (n *Notifier) Notify(_ context.Context, chatID int64, text string) error {
	_, err := n.tb.Send(telebot.ChatID(chatID), text)
	return err
}
