// Package errors provides structured error types for gridpath.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Map validation codes (MISSING_*, AMBIGUOUS_*) are raised by the grid parser
// before any graph is built. They abort the whole operation. An end cell that
// cannot be reached is not an error: only the start is marked.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingStart, "no start point specified")
//	if errors.Is(err, errors.ErrCodeMissingStart) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode request")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Map validation errors
	ErrCodeMissingStart   Code = "MISSING_START"
	ErrCodeMissingEnd     Code = "MISSING_END"
	ErrCodeAmbiguousStart Code = "AMBIGUOUS_START"
	ErrCodeAmbiguousEnd   Code = "AMBIGUOUS_END"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeMapTooLarge   Code = "MAP_TOO_LARGE"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a map validation failure, i.e. the
// input lacks exactly one start or exactly one end marker.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingStart, ErrCodeMissingEnd, ErrCodeAmbiguousStart, ErrCodeAmbiguousEnd:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status the HTTP API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeMissingStart, ErrCodeMissingEnd, ErrCodeAmbiguousStart, ErrCodeAmbiguousEnd:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeMapTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
