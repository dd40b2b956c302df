// Package errors provides structured error types for the congratulator.
//
// Every fallible operation in the postcard pipeline returns a plain Go error
// that carries a machine-readable [Code]. The code is the error kind: callers
// branch on it with [Is] or [GetCode] instead of inspecting messages.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: configuration or input validation failures
//   - NOT_FOUND: unknown template, missing cache entry
//   - COMPOSE_ERROR, LAYOUT_ERROR: text pipeline failures
//   - CACHE_UNAVAILABLE, UPLOAD_FAILURE, NETWORK_ERROR: collaborator failures
//   - INTERNAL_ERROR: unexpected faults (encoding, I/O)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCompose, "group %q has no variants", label)
//	if errors.Is(err, errors.ErrCodeCompose) {
//	    // configuration bug
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpload, origErr, "upload for peer %s", peer)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Pipeline errors
	ErrCodeCompose Code = "COMPOSE_ERROR"
	ErrCodeLayout  Code = "LAYOUT_ERROR"

	// Collaborator errors
	ErrCodeCacheUnavailable Code = "CACHE_UNAVAILABLE"
	ErrCodeUpload           Code = "UPLOAD_FAILURE"
	ErrCodeNetwork          Code = "NETWORK_ERROR"

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
// Only the outermost *Error in the chain is consulted, so a LAYOUT_ERROR
// wrapped as INTERNAL_ERROR reports INTERNAL_ERROR.
func Is(err error, code Code) bool {
	return GetCode(err) == code
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

// WrapKeep wraps err with extra context, keeping the code err already
// carries. Errors without a code get fallback.
func WrapKeep(fallback Code, err error, format string, args ...any) *Error {
	code := GetCode(err)
	if code == "" {
		code = fallback
	}
	return Wrap(code, err, format, args...)
}
