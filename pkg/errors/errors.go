// Package errors provides structured error types for lassoview.
//
// This package defines error codes and types that enable:
//   - Fail-fast rejection of malformed view configuration
//   - Machine-readable codes for provider failures the UI can recover from
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Configuration and input validation failures
//   - NOT_FOUND: Missing datasets
//   - NETWORK_*, TIMEOUT, PROVIDER_*: External provider failures
//   - INTERNAL_*: Unexpected internal errors
//
// Geometry edge cases (degenerate lasso paths, empty record sets, zero-width
// domains) are normalized by the packages that meet them and never surface
// as errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLink, "link %d: target %d out of range", i, tgt)
//	if errors.Is(err, errors.ErrCodeInvalidLink) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "dial %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidAccessor Code = "INVALID_ACCESSOR"
	ErrCodeInvalidLink     Code = "INVALID_LINK"
	ErrCodeArrayLength     Code = "ARRAY_LENGTH"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Provider errors
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeTimeout           Code = "TIMEOUT"
	ErrCodeProviderMalformed Code = "PROVIDER_MALFORMED"
	ErrCodeProviderFailed    Code = "PROVIDER_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsConfig reports whether err is one of the configuration error codes.
// Configuration errors are raised at render time and are never retried.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidAccessor,
		ErrCodeInvalidLink, ErrCodeArrayLength, ErrCodeInvalidColor, ErrCodeInvalidPath:
		return true
	}
	return false
}

// IsProvider reports whether err came from an external data or layout
// provider. Callers treat these as recoverable: the affected view stays
// unrendered and the rest of the page keeps working.
func IsProvider(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeProviderMalformed, ErrCodeProviderFailed, ErrCodeNotFound:
		return true
	}
	return false
}
