// Package errors defines the coded errors returned across the canvas
// engine. Store operations report bad ids and blocked gestures with
// INVALID_* and GESTURE_* codes, the asset layer wraps backend failures
// as STORAGE_ERROR, and the CLI maps INVALID_INPUT to a usage exit status.
//
// Callers branch on the code rather than the message:
//
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    ...
//	}
//
// MultiError gathers the per-item failures of best-effort batches such as
// image preloading and asset garbage collection.
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
	ErrCodeInvalidID       Code = "INVALID_ID"
	ErrCodeInvalidEdge     Code = "INVALID_EDGE"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeDuplicateID     Code = "DUPLICATE_ID"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound  Code = "EDGE_NOT_FOUND"
	ErrCodeAssetNotFound Code = "ASSET_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Asset pipeline errors
	ErrCodeStorage      Code = "STORAGE_ERROR"
	ErrCodeDecodeFailed Code = "DECODE_FAILED"

	// Interaction errors
	ErrCodeGestureInactive Code = "GESTURE_INACTIVE"
	ErrCodeGestureBlocked  Code = "GESTURE_BLOCKED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a Code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error that records cause beneath the formatted message.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "" if none.
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error, without
// the code or cause. Uncoded errors are returned as-is.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// MultiError collects independent failures from a best-effort batch,
// keyed by the id of the item that failed.
type MultiError struct {
	Failures map[string]error
}

// Add records a failure for id. A nil err is ignored.
func (m *MultiError) Add(id string, err error) {
	if err == nil {
		return
	}
	if m.Failures == nil {
		m.Failures = make(map[string]error)
	}
	m.Failures[id] = err
}

// Len returns the number of recorded failures.
func (m *MultiError) Len() int { return len(m.Failures) }

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Failures) == 1 {
		for id, err := range m.Failures {
			return fmt.Sprintf("%s: %v", id, err)
		}
	}
	return fmt.Sprintf("%d operations failed", len(m.Failures))
}

// ErrOrNil returns m as an error if it recorded failures, otherwise nil.
func (m *MultiError) ErrOrNil() error {
	if m == nil || len(m.Failures) == 0 {
		return nil
	}
	return m
}
