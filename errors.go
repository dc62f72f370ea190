package gsutil

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is matched by network failures, malformed headers and unsupported methods
	ErrTransport = errors.New("transport error")
	// ErrAuth is matched by token issuance and attachment failures
	ErrAuth = errors.New("auth error")
	// ErrAPI is matched by well-formed non-success responses from the object store
	ErrAPI = errors.New("api error")
	// ErrSigning is matched by URL signing failures
	ErrSigning = errors.New("signing error")
	// ErrValidation is matched by malformed user input
	ErrValidation = errors.New("validation error")
)

// ValidationError describes input rejected before any request is made.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
