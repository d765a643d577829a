package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure classes for COA processing. A single document failing with any of
// these never aborts the batch it arrived in.
var (
	// ErrDocumentUnreadable: the external reader cannot open or parse the file.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrSchemaMismatch: no recognizable table/column structure; treated as
	// "all fields missing" downstream, not as a hard failure.
	ErrSchemaMismatch = errors.New("no recognizable table structure")
	// ErrPersistence: the record store rejected a write.
	ErrPersistence = errors.New("persistence failure")
	// ErrConfigMissing: a required external resource is absent; callers fall
	// back to built-in defaults.
	ErrConfigMissing = errors.New("configuration missing")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// NewAppError constructs an AppError with a stable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
