package bot

import (
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/keyboard"
	"github.com/moonforge/worker-bot/internal/workflow"
)

// Executor turns the engine's outbound commands into Telegram API calls.
// Send failures after a committed state change are logged and swallowed: the
// workflow does not roll back because a notification bounced.
type Executor struct {
	tb  *telebot.Bot
	kb  *keyboard.Builder
	log *slog.Logger
}

// NewExecutor builds a command executor over the telebot instance.
func NewExecutor(tb *telebot.Bot, kb *keyboard.Builder, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}

	return &Executor{tb: tb, kb: kb, log: log}
}

// Run executes the commands in order. The telebot context is needed for
// callback responses, which are bound to the inbound update.
func (e *Executor) Run(c telebot.Context, cmds []workflow.Command) error {
	for _, cmd := range cmds {
		switch v := cmd.(type) {
		case workflow.SendMessage:
			e.send(v)
		case workflow.EditMessage:
			e.edit(v)
		case workflow.AnswerCallback:
			e.respond(c, v)
		default:
			e.log.Warn("unknown outbound command", slog.Any("command", cmd))
		}
	}

	return nil
}

func (e *Executor) send(msg workflow.SendMessage) {
	var opts []interface{}
	if markup := e.kb.Render(msg.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	if _, err := e.tb.Send(telebot.ChatID(msg.ChatID), msg.Text, opts...); err != nil {
		e.log.Error("failed to send message",
			slog.Int64("chat_id", msg.ChatID),
			slog.Any("error", err),
		)
	}
}

func (e *Executor) edit(msg workflow.EditMessage) {
	target := &telebot.StoredMessage{
		MessageID: strconv.Itoa(msg.Ref.MessageID),
		ChatID:    msg.Ref.ChatID,
	}

	var opts []interface{}
	if markup := e.kb.Render(msg.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	if _, err := e.tb.Edit(target, msg.Text, opts...); err != nil {
		e.log.Error("failed to edit message",
			slog.Int64("chat_id", msg.Ref.ChatID),
			slog.Int("message_id", msg.Ref.MessageID),
			slog.Any("error", err),
		)
	}
}

func (e *Executor) respond(c telebot.Context, ack workflow.AnswerCallback) {
	if c == nil || c.Callback() == nil {
		return
	}

	err := c.Respond(&telebot.CallbackResponse{
		Text:      ack.Text,
		ShowAlert: ack.Alert,
	})
	if err != nil {
		e.log.Error("failed to answer callback", slog.Any("error", err))
	}
}
