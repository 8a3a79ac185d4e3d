// Package domainerrors provides coded errors for domain and service layers.
//
// Stores report infrastructure facts with pkg/platform/sentinel errors;
// services translate those into coded errors from this package so transports
// can map them onto protocol responses without string matching.
//
// Errors created with New are comparable with errors.Is, so packages may
// declare shared error values:
//
//	var ErrNotAvailable = domainerrors.New(domainerrors.CodeConflict, "donation is not available")
//
// and callers can branch with errors.Is(err, models.ErrNotAvailable) or, when
// only the class matters, domainerrors.HasCode(err, domainerrors.CodeConflict).
package domainerrors

import "errors"

// Code classifies a domain error for programmatic handling and HTTP mapping.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by code and message, so errors.Is works both against
// shared package-level values and against freshly constructed ones.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a coded error. The result is a distinct value, so package-level
// errors declared with New work with errors.Is.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var e *Error
	for ; err != nil; err = errors.Unwrap(err) {
		if errors.As(err, &e) && e.Code == code {
			return true
		}
	}
	return false
}

// Is is a readable alias for HasCode in call sites that already alias this
// package as dErrors.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode extracts the code from err, or CodeInternal when err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
