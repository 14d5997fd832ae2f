package service

import (
	"errors"
	"fmt"
)

var (
	ErrAuth       = errors.New("unauthorized") // 401
	ErrValidation = errors.New("validation")   // 400
	ErrNotFound   = errors.New("not found")    // 404
	ErrConflict   = errors.New("conflict")     // 409
)

// Error carries a caller-facing message and an internal reason code.
// Only Msg is ever shown to clients; Reason and Err are for logs and metrics.
type Error struct {
	Kind   error
	Msg    string
	Reason string
	Err    error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func authError(msg, reason string, cause error) *Error {
	return &Error{Kind: ErrAuth, Msg: msg, Reason: reason, Err: cause}
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...), Reason: "validation"}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Msg: msg, Reason: "not_found"}
}

func conflictError(msg string) *Error {
	return &Error{Kind: ErrConflict, Msg: msg, Reason: "conflict"}
}

// ReasonOf returns the internal reason code of err, or "internal" for errors
// outside the taxonomy.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return "internal"
}

// Message returns the caller-facing message of err, or "" for errors outside
// the taxonomy.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
