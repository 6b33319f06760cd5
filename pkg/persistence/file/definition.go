package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
)

// DefinitionRepository stores one JSON file per definition under
// <root>/definitions/.
type DefinitionRepository struct {
	root string
}

// NewDefinitionRepository creates a new definition repository.
func NewDefinitionRepository(root string) *DefinitionRepository {
	return &DefinitionRepository{root: root}
}

// GetAll returns all definitions, newest first.
func (dr *DefinitionRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	root := os.DirFS(path.Join(dr.root, "definitions"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list definition files: %w", err)
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		definitionID := file[:len(file)-5] // Remove .json extension

		def, err := dr.GetByID(ctx, definitionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load definition %s: %w", definitionID, err)
		}

		if def != nil {
			definitions = append(definitions, def)
		}
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].CreatedAt.After(definitions[j].CreatedAt)
	})

	return definitions, nil
}

// GetByID retrieves a definition by its ID. A missing file yields (nil, nil).
func (dr *DefinitionRepository) GetByID(_ context.Context, definitionID string) (*models.WorkflowDefinition, error) {
	filePath := filepath.Clean(path.Join(dr.root, "definitions", definitionID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch definition %s: %w", definitionID, err)
	}

	var def models.WorkflowDefinition

	err = json.Unmarshal(body, &def)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition %s: %w", definitionID, err)
	}

	return &def, nil
}

// Save writes a definition to the file system. The incoming Version must match
// the stored one (0 for a never-persisted definition); the saved copy carries
// the incremented version.
func (dr *DefinitionRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	err := os.MkdirAll(path.Join(dr.root, "definitions"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}

	existing, err := dr.GetByID(ctx, def.ID)
	if err != nil {
		return persistence.NewDefinitionError("Save", def.ID, err)
	}

	if existing != nil && existing.Version != def.Version {
		return persistence.NewDefinitionError("Save", def.ID, persistence.ErrVersionConflict)
	}

	now := time.Now().UTC()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}

	def.UpdatedAt = now
	def.Version++

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", def.ID, err)
	}

	filePath := path.Join(dr.root, "definitions", def.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a definition by its ID. Deleting a missing definition is a no-op.
func (dr *DefinitionRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(dr.root, "definitions", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	return nil
}
