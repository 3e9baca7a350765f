package models

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidID      = errors.New("invalid id format")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountInactive = errors.New("account is not active")
	ErrNoPassword      = errors.New("account has no password configured")
)

// ValidationError carries the full list of field-level failures.
// It matches ErrBadRequest under errors.Is.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Errors, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrBadRequest
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ConflictError describes which unique constraint or slot was violated.
// It matches ErrConflict under errors.Is.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError returns a ConflictError with the given reason.
func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}
