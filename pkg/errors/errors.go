// Package errors provides structured error types for the gpuvenv application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across all commands
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Exit-status propagation from failed external commands
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - MISSING_*: required tools absent from the host
//   - INVALID_*: input or configuration validation failures
//   - *_FAILED: an operation that started and did not complete
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "profile %q has no purpose", name)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap a failed external command, carrying its exit status
//	err := errors.WrapExit(errors.ErrCodeCommandFailed, cmdErr, 2, "apt-get update")
//	status := errors.ExitStatus(err) // 2
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Host tooling errors
	ErrCodeMissingTool Code = "MISSING_TOOL"

	// Input validation errors
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeProfileNotFound Code = "PROFILE_NOT_FOUND"
	ErrCodeManifestMissing Code = "MANIFEST_MISSING"

	// Operation failures
	ErrCodeCommandFailed Code = "COMMAND_FAILED"
	ErrCodeEnvReset      Code = "ENV_RESET_FAILED"
	ErrCodeFreezeFailed  Code = "FREEZE_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional cause, and an
// optional exit status taken from a failed external command.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
	Exit    int    // Exit status of the failing command (0 if not applicable)
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

// WrapExit creates a new Error wrapping a failed external command and
// recording the command's exit status for later propagation.
func WrapExit(code Code, cause error, exit int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
		Exit:    exit,
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

// ExitStatus returns the process exit status that should be reported for
// err. It walks the error chain and returns the first recorded positive
// exit status; every other failure maps to 1, and nil maps to 0. A
// command that never started or died on a signal records a negative
// status, which is not a real exit code and also maps to 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		var se *Error
		if errors.As(e, &se) && se.Exit > 0 {
			return se.Exit
		}
	}
	return 1
}
