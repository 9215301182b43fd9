// Package workflow implements the worker registration, approval, domain-claim,
// and withdrawal state machine. The engine computes state transitions and
// returns outbound messaging commands; it never talks to Telegram itself.
package workflow

// Actor identifies the Telegram user behind an inbound update.
type Actor struct {
	ID        int64
	ChatID    int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName mirrors the worker profile naming for admin-facing texts.
func (a Actor) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	if a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return a.FirstName
}

// MessageRef points at an existing chat message, typically the one carrying
// the inline keyboard that produced a callback.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Command is an outbound messaging instruction produced by the engine and
// executed by the bot layer.
type Command interface {
	isCommand()
}

// SendMessage delivers a new message, optionally with an inline keyboard.
type SendMessage struct {
	ChatID   int64
	Text     string
	Keyboard Keyboard
}

// EditMessage replaces the text and keyboard of an existing message.
type EditMessage struct {
	Ref      MessageRef
	Text     string
	Keyboard Keyboard
}

// AnswerCallback dismisses the client-side spinner, optionally with a toast.
type AnswerCallback struct {
	Text  string
	Alert bool
}

func (SendMessage) isCommand()    {}
func (EditMessage) isCommand()    {}
func (AnswerCallback) isCommand() {}

// KeyboardKind selects which inline keyboard the bot layer should attach.
type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	KeyboardTraffic
	KeyboardHours
	KeyboardExperience
	KeyboardMain
	// KeyboardReview carries approve/reject buttons; Ref is the applicant's
	// Telegram id.
	KeyboardReview
	// KeyboardWithdrawal carries payout/reject buttons; Ref is the request id.
	KeyboardWithdrawal
	// KeyboardMarkPaid carries the final mark-paid button; Ref is the request id.
	KeyboardMarkPaid
	// KeyboardWorkersPage carries pagination controls for the workers listing.
	KeyboardWorkersPage
)

// Keyboard describes an inline keyboard without depending on the transport.
type Keyboard struct {
	Kind       KeyboardKind
	Ref        int64
	Page       int
	TotalPages int
}

func send(chatID int64, text string) SendMessage {
	return SendMessage{ChatID: chatID, Text: text}
}

func sendWithKeyboard(chatID int64, text string, kb Keyboard) SendMessage {
	return SendMessage{ChatID: chatID, Text: text, Keyboard: kb}
}

func edit(ref MessageRef, text string, kb Keyboard) EditMessage {
	return EditMessage{Ref: ref, Text: text, Keyboard: kb}
}

func answer(text string) AnswerCallback {
	return AnswerCallback{Text: text}
}

func alert(text string) AnswerCallback {
	return AnswerCallback{Text: text, Alert: true}
}
