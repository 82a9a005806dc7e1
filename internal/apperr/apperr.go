// Package apperr carries typed failure codes across service boundaries so
// handlers can map them to stable HTTP responses without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Stable machine-readable codes returned to clients.
const (
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeBelowMinimumOffer = "below_minimum_offer"
	CodeSelfNegotiation   = "self_negotiation_forbidden"
	CodeBlocked           = "blocked_counterparty"
	CodeNotAParty         = "not_a_party"
	CodeInvalidTransition = "invalid_transition"
	CodeUnauthorized      = "unauthorized"
	CodeStorage           = "storage_failure"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap marks err with a code while keeping the cause reachable via Unwrap.
// Storage-layer faults are wrapped with CodeStorage so callers can tell
// "retry later" apart from business-rule rejections.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the failure code of err, or CodeStorage for errors that
// never got classified (anything escaping a repository untyped is treated
// as a storage fault, not a business rejection).
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorage
}

// MessageOf returns the human-readable message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func Is(err error, code string) bool {
	return CodeOf(err) == code
}
