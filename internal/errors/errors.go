// Package errors provides the coded errors returned by the sync core.
//
// Usage:
//
//	// In services - return typed errors
//	if len(book.Editions) == 0 {
//	    return errors.BookNotFoundf("no edition with ISBN/ASIN <i>%s</i>", isbns)
//	}
//
//	// In commands - check with errors.Is
//	if errors.Is(err, errors.ErrPageCountMissing) {
//	    ...
//	}
//
//	// Or use the Code directly for switch statements
//	var syncErr *errors.Error
//	if errors.As(err, &syncErr) {
//	    switch syncErr.Code {
//	    case errors.CodeBookNotFound:
//	    case errors.CodeRemote:
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeBookNotFound     Code = "BOOK_NOT_FOUND"
	CodeEditionNotFound  Code = "EDITION_NOT_FOUND"
	CodePageCountMissing Code = "PAGE_COUNT_MISSING"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeRemote           Code = "REMOTE_ERROR"
	CodeCodec            Code = "CODEC_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConfig           Code = "CONFIG"
)

// ExitCode returns the process exit status for an error code.
func (c Code) ExitCode() int {
	switch c {
	case CodeInvalidInput, CodeConfig:
		return 2
	default:
		return 1
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrBookNotFound     = &Error{Code: CodeBookNotFound, Message: "book not found"}
	ErrEditionNotFound  = &Error{Code: CodeEditionNotFound, Message: "edition not found"}
	ErrPageCountMissing = &Error{Code: CodePageCountMissing, Message: "page count missing"}
	ErrInvalidInput     = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrRemote           = &Error{Code: CodeRemote, Message: "remote error"}
	ErrCodec            = &Error{Code: CodeCodec, Message: "codec error"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConfig           = &Error{Code: CodeConfig, Message: "configuration error"}
)

// Constructor functions for creating errors with custom messages.

// BookNotFoundf creates a book not found error with formatted message.
func BookNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeBookNotFound, Message: fmt.Sprintf(format, args...)}
}

// EditionNotFoundf creates an edition not found error with formatted message.
func EditionNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeEditionNotFound, Message: fmt.Sprintf(format, args...)}
}

// PageCountMissingf creates a page count missing error with formatted message.
func PageCountMissingf(format string, args ...any) *Error {
	return &Error{Code: CodePageCountMissing, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput creates an invalid input error.
func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

// InvalidInputf creates an invalid input error with formatted message.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputWithDetails creates an invalid input error with details.
func InvalidInputWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Details: details}
}

// Codecf creates a codec error with formatted message.
func Codecf(format string, args ...any) *Error {
	return &Error{Code: CodeCodec, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Configf creates a configuration error with formatted message.
func Configf(format string, args ...any) *Error {
	return &Error{Code: CodeConfig, Message: fmt.Sprintf(format, args...)}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// Remotef wraps a failed remote call with the context needed to diagnose it.
func Remotef(err error, format string, args ...any) *Error {
	return Wrapf(err, CodeRemote, format, args...)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
