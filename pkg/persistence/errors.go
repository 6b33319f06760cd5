package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDefinitionNotFound indicates no definition exists for the given identifier.
	ErrDefinitionNotFound = errors.New("definition not found")

	// ErrVersionConflict indicates the stored version no longer matches the
	// version the caller last observed.
	ErrVersionConflict = errors.New("definition modified elsewhere")
)

// DefinitionError wraps definition-related storage errors with context.
type DefinitionError struct {
	Op           string // Operation being performed (e.g. "GetByID", "Save")
	DefinitionID string
	Err          error
	Message      string
}

func (e *DefinitionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for definition %s: %s (%v)", e.Op, e.DefinitionID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for definition %s: %v", e.Op, e.DefinitionID, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func (e *DefinitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDefinitionError creates a new definition error with context.
func NewDefinitionError(op, definitionID string, err error) *DefinitionError {
	return &DefinitionError{
		Op:           op,
		DefinitionID: definitionID,
		Err:          err,
	}
}

// IsDefinitionNotFound checks if an error indicates a missing definition.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsVersionConflict checks if an error indicates a stale-version save.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
