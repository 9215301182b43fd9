// Package errors defines the application error taxonomy. Every fault surfaced
// to a user passes through an AppError so the Handler can pick the log level,
// the Sentry routing, and the user-facing notice from one place.
package errors

import "fmt"

// Severity drives reporting: high and critical go to Sentry.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries a machine code, an operator-facing message, and a
// user-facing message in the bot locale.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func newAppError(code string, severity Severity, retryable bool, message, userMessage string, cause error) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		UserMessage: userMessage,
		Severity:    severity,
		Retryable:   retryable,
		cause:       cause,
	}
}

// NewValidationError covers malformed user input: bad subdomains, wallet
// addresses outside the accepted length, unparseable ids.
func NewValidationError(msg string) *AppError {
	return newAppError("E100", SeverityLow, false,
		msg, fmt.Sprintf("Неверный формат данных. %s", msg), nil)
}

// NewDatabaseError wraps a storage failure. Retryable: the pool reconnects.
func NewDatabaseError(cause error) *AppError {
	var detail string
	if cause != nil {
		detail = cause.Error()
	}
	return newAppError("E200", SeverityHigh, true,
		fmt.Sprintf("Database error: %s", detail), "Временная проблема, попробуйте позже", cause)
}

// NewExternalAPIError wraps a failure of an upstream service such as the
// price oracle or the Telegram API.
func NewExternalAPIError(apiName string, cause error) *AppError {
	return newAppError("E300", SeverityMedium, true,
		fmt.Sprintf("External API error: %s", apiName), "Сервис временно недоступен", cause)
}

// NewStateError covers operations invalid for the worker's current step or
// status, e.g. claiming a domain before approval.
func NewStateError(msg string) *AppError {
	return newAppError("E400", SeverityMedium, false,
		msg, "Операция невозможна в текущем состоянии", nil)
}

// NewRateLimitError tells the user when to come back.
func NewRateLimitError(retryAfter int) *AppError {
	return newAppError("E500", SeverityLow, false,
		fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		fmt.Sprintf("Слишком много запросов. Попробуйте через %d секунд", retryAfter), nil)
}

// NewAuthorizationError covers admin-only actions invoked by non-admins.
// Handled as a silent deny, never as a crash.
func NewAuthorizationError(principalID int64) *AppError {
	return newAppError("E600", SeverityLow, false,
		fmt.Sprintf("Unauthorized admin action by %d", principalID), "⛔ Недостаточно прав", nil)
}

// NewNotFoundError covers references to missing workers or withdrawal requests.
func NewNotFoundError(entity string, id int64) *AppError {
	return newAppError("E700", SeverityLow, false,
		fmt.Sprintf("%s %d not found", entity, id), "Запись не найдена", nil)
}

// NewConflictError covers uniqueness violations: duplicate subdomains and
// second pending withdrawals.
func NewConflictError(msg string) *AppError {
	return newAppError("E800", SeverityLow, false,
		msg, "Уже занято или уже существует", nil)
}
