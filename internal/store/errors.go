package store

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
)

// NotFoundError indicates a referenced session or log entry does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indicates invalid input, such as a non-positive duration.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StateError indicates an operation that is not allowed in the session's current phase.
type StateError struct {
	SessionID int64
	Phase     Phase
	Message   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("session %d is %s: %s", e.SessionID, e.Phase, e.Message)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
