// Package services provides the application service layer for workflow definitions.
package services

import (
	"errors"
	"fmt"

	"github.com/flowpad/flowpad/pkg/persistence"
)

// Business logic errors. Validation errors map to HTTP 400, conflicts to 409.
var (
	ErrDefinitionNil          = errors.New("definition cannot be nil")
	ErrDefinitionNameRequired = errors.New("definition name is required")
	ErrInvalidDefinition      = errors.New("invalid definition")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDefinitionNil) ||
		errors.Is(err, ErrDefinitionNameRequired) ||
		errors.Is(err, ErrInvalidDefinition)
}

// IsConflictError checks if an error is a stale-version conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return persistence.IsVersionConflict(err)
}
