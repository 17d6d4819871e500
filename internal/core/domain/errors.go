package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match these through errors.Is so the transport
// layer can map a kind to a status code without knowing the concrete type.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("access forbidden")
	ErrUnauthorized = errors.New("authentication required")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)

// ErrUserNotFound is returned by stores when no row matches a lookup.
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

// Unique-key violations. Stores return these for both insert and update so the
// client sees the same message regardless of which path hit the constraint.
var (
	ErrUsernameTaken = &ConflictError{Field: "username", Message: "Username is already taken"}
	ErrEmailTaken    = &ConflictError{Field: "email", Message: "Email is already in use"}
)

// NotFoundError carries the client-facing description of a missing entity.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UserNotFound builds the NotFoundError for a user lookup by field.
func UserNotFound(field string, value any) error {
	return &NotFoundError{Resource: "User", Field: field, Value: value}
}

// ConflictError reports a duplicate unique key.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError aggregates every failing field; Fields maps field name to message.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError with a single failing field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add records a field error, keeping the first message reported for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns e when at least one field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
