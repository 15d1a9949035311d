package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistenceUnavailable is returned when a backing store cannot be reached.
	// Components absorb it and continue in memory.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrCorruptState is returned when persisted state cannot be decoded.
	// Callers treat the state as empty.
	ErrCorruptState = errors.New("corrupt persisted state")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ValidationError against ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
