// Package persistence provides the storage abstraction for workflow definitions.
package persistence

import (
	"context"

	"github.com/flowpad/flowpad/pkg/models"
)

// Persistence is the storage backend for workflow definitions.
type Persistence interface {
	DefinitionRepository() DefinitionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// DefinitionRepository stores workflow definitions with optimistic
// concurrency control. Save rejects a definition whose Version does not match
// the stored one with ErrVersionConflict, and increments the stored version on
// success (a never-persisted definition saves at version 1).
type DefinitionRepository interface {
	GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	Save(ctx context.Context, def *models.WorkflowDefinition) error
	Delete(ctx context.Context, id string) error
}
