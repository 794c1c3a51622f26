// Package errors provides coded errors shared by the engine, the CLI and
// the HTTP API.
//
// Every failure the engine reports carries a [Code]. The HTTP server maps
// codes to status codes and the CLI prints [UserMessage] next to the code.
//
// # Codes
//
//   - INVALID_*: the request was rejected before any lookup
//   - *_NOT_FOUND: an unknown package or resolution id
//   - METADATA_FETCH, TIMEOUT: store or deadline failures
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConstraint, "search_budget must be >= 0, got %d", b)
//	if errors.Is(err, errors.ErrCodeInvalidConstraint) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeMetadataFetch, cause, "metadata for %s", name)
//
// [Sentinel] builds a message-less value for use with the standard
// library's errors.Is, so packages can export sentinels such as
// deps.ErrPackageNotFound.
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidConstraint Code = "INVALID_CONSTRAINT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidCatalog    Code = "INVALID_CATALOG"

	// Resource not found errors
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodePackageNotFound    Code = "PACKAGE_NOT_FOUND"
	ErrCodeResolutionNotFound Code = "RESOLUTION_NOT_FOUND"

	// Store and deadline errors
	ErrCodeMetadataFetch Code = "METADATA_FETCH"
	ErrCodeTimeout       Code = "TIMEOUT"

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

// Is lets errors.Is match two *Error values by code, so a sentinel such as
// deps.ErrPackageNotFound matches any error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Sentinel returns a message-less Error usable as an errors.Is target that
// matches every Error with the same code.
func Sentinel(code Code) *Error {
	return &Error{Code: code}
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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
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
