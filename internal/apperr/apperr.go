// Package apperr defines the error taxonomy shared by the store, the CLI and
// the HTTP API.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown is reported for errors that did not originate here.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks missing or malformed input.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound marks a session or tag that does not exist or is not
	// visible to the caller.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict marks a write that collides with existing state, such as a
	// second active timer or a duplicate tag name.
	CodeConflict Code = "CONFLICT"
	// CodeInvalidState marks a timer transition that is not legal from the
	// session's current state.
	CodeInvalidState Code = "INVALID_STATE"
)

// Error is a domain error carrying a code and a user-facing message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code, so errors.Is works against the
// sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Code: CodeValidation}
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrConflict     = &Error{Code: CodeConflict}
	ErrInvalidState = &Error{Code: CodeInvalidState}
)

func newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a CodeValidation error.
func Validation(format string, args ...any) error {
	return newf(CodeValidation, format, args...)
}

// NotFound returns a CodeNotFound error.
func NotFound(format string, args ...any) error {
	return newf(CodeNotFound, format, args...)
}

// Conflict returns a CodeConflict error.
func Conflict(format string, args ...any) error {
	return newf(CodeConflict, format, args...)
}

// InvalidState returns a CodeInvalidState error.
func InvalidState(format string, args ...any) error {
	return newf(CodeInvalidState, format, args...)
}

// CodeOf extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
