package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
)

// ErrDefinitionNotFound is returned when a definition is not found.
var ErrDefinitionNotFound = persistence.ErrDefinitionNotFound

// Definition implements the persistence API contract on top of a repository:
// create assigns the server ID and the initial version, update enforces
// optimistic concurrency against the stored version.
type Definition struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewDefinition creates a new definition service.
func NewDefinition(p persistence.Persistence) *Definition {
	return &Definition{
		persistence: p,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Definition) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all definitions.
func (s *Definition) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	definitions, err := s.persistence.DefinitionRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	return definitions, nil
}

// FetchByID retrieves a definition by its ID.
func (s *Definition) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	def, err := s.persistence.DefinitionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if def == nil {
		return nil, ErrDefinitionNotFound
	}

	return def, nil
}

// Create adds a new definition to the repository. The server assigns the ID;
// any client-supplied ID or version is discarded.
func (s *Definition) Create(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if err := s.validateDefinition("Create", def); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate definition ID: %w", err)
	}

	def.ID = id.String()
	def.Version = 0
	def.Graph.Normalize()

	err = s.persistence.DefinitionRepository().Save(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("failed to create definition: %w", err)
	}

	return def, nil
}

// Update modifies an existing definition by its ID. The incoming Version must
// match the stored one; a mismatch surfaces as a conflict error.
func (s *Definition) Update(ctx context.Context, definitionID string, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if err := s.validateDefinition("Update", def); err != nil {
		return nil, err
	}

	existing, err := s.persistence.DefinitionRepository().GetByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrDefinitionNotFound
	}

	def.ID = definitionID
	def.CreatedAt = existing.CreatedAt
	def.Graph.Normalize()

	err = s.persistence.DefinitionRepository().Save(ctx, def)
	if err != nil {
		if persistence.IsVersionConflict(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to update definition: %w", err)
	}

	return def, nil
}

// Delete removes a definition by its ID.
func (s *Definition) Delete(ctx context.Context, definitionID string) error {
	existing, err := s.persistence.DefinitionRepository().GetByID(ctx, definitionID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrDefinitionNotFound
	}

	err = s.persistence.DefinitionRepository().Delete(ctx, definitionID)
	if err != nil {
		return fmt.Errorf("failed to delete definition: %w", err)
	}

	return nil
}

func (s *Definition) validateDefinition(op string, def *models.WorkflowDefinition) error {
	if def == nil {
		return ErrDefinitionNil
	}

	if strings.TrimSpace(def.Name) == "" {
		return NewValidationError(op, "NAME_REQUIRED", "definition name is required", ErrDefinitionNameRequired)
	}

	if err := s.validate.Struct(def); err != nil {
		return NewValidationError(op, "INVALID_DEFINITION", err.Error(), ErrInvalidDefinition)
	}

	return nil
}
