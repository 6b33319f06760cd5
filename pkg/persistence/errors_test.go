package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinitionError_WrapsSentinel(t *testing.T) {
	err := NewDefinitionError("Save", "w1", ErrVersionConflict)

	assert.True(t, IsVersionConflict(err))
	assert.False(t, IsDefinitionNotFound(err))
	assert.Contains(t, err.Error(), "Save")
	assert.Contains(t, err.Error(), "w1")
}

func TestDefinitionError_Unwrap(t *testing.T) {
	base := errors.New("disk full")
	err := NewDefinitionError("Save", "w1", base)

	assert.True(t, errors.Is(err, base))
	assert.False(t, IsVersionConflict(err))
}

func TestIsHelpers_NilAndUnrelated(t *testing.T) {
	assert.False(t, IsVersionConflict(nil))
	assert.False(t, IsDefinitionNotFound(errors.New("other")))
	assert.True(t, IsDefinitionNotFound(ErrDefinitionNotFound))
}
