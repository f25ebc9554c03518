// Package errors provides structured error types for the obvious data model.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the table, network and factory layers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for the CLI
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes follow the failure taxonomy of the data model:
//   - CONFIGURATION: a backend is unavailable or misconfigured
//   - SCHEMA_MISMATCH: a tuple does not fit the target table's schema
//   - INVALID_REFERENCE: a row, column, node or edge does not exist
//   - UNSUPPORTED: the target declares the operation unsupported
//   - TYPE_MISMATCH: a value does not fit a column's declared type
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidReference, "row %d is not valid", row)
//	if errors.Is(err, errors.ErrCodeInvalidReference) {
//	    // Handle missing row
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeConfiguration, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
	"slices"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Construction-time failures
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"

	// Schema and value failures
	ErrCodeSchemaMismatch  Code = "SCHEMA_MISMATCH"
	ErrCodeTypeMismatch    Code = "TYPE_MISMATCH"
	ErrCodeDuplicateColumn Code = "DUPLICATE_COLUMN"

	// Reference failures
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeNotFound         Code = "NOT_FOUND"

	// Operation failures
	ErrCodeUnsupported   Code = "UNSUPPORTED"
	ErrCodeReentrant     Code = "REENTRANT"
	ErrCodeMalformedTree Code = "MALFORMED_TREE"

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

// Is reports whether any *Error in err's tree has the given code. The
// search follows Unwrap chains and the branches of joined errors, so a
// code wrapped under a different one still matches.
func Is(err error, code Code) bool {
	found := false
	walk(err, func(e *Error) bool {
		found = e.Code == code
		return !found
	})
	return found
}

// Codes returns the distinct codes in err's tree, outermost first.
// Joined errors, such as the mirror failures collected by a table link,
// contribute one code per branch.
func Codes(err error) []Code {
	var codes []Code
	walk(err, func(e *Error) bool {
		if !slices.Contains(codes, e.Code) {
			codes = append(codes, e.Code)
		}
		return true
	})
	return codes
}

// walk visits every *Error in err's tree depth-first until fn returns false.
func walk(err error, fn func(*Error) bool) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok && !fn(e) {
		return false
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if !walk(inner, fn) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), fn)
	}
	return true
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
