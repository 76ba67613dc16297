package domain

import "fmt"

// ErrorKind classifies analysis and portfolio errors so the HTTP layer can
// map them to status codes without string matching.
type ErrorKind string

const (
	ErrNotFound           ErrorKind = "not_found"
	ErrInsufficientData   ErrorKind = "insufficient_data"
	ErrInvalidPortfolio   ErrorKind = "invalid_portfolio"
	ErrInvalidComposition ErrorKind = "invalid_composition"
	ErrInvalidParameter   ErrorKind = "invalid_parameter"
)

// Error is a structured error carrying its kind and the offending field.
type Error struct {
	Kind  ErrorKind `json:"kind"`
	Field string    `json:"field,omitempty"`
	Msg   string    `json:"message"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// NewError creates a structured error with a formatted message.
func NewError(kind ErrorKind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown ticker.
func NotFound(ticker string) *Error {
	return NewError(ErrNotFound, "ticker", "no data available for %s", ticker)
}

// InsufficientData reports a series shorter than an indicator's minimum window.
func InsufficientData(field string, have, need int) *Error {
	return NewError(ErrInsufficientData, field, "need at least %d bars, have %d", need, have)
}

// InvalidParameter reports a non-positive period, multiplier or threshold.
func InvalidParameter(field, format string, args ...interface{}) *Error {
	return NewError(ErrInvalidParameter, field, format, args...)
}
