package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
)

// DefinitionRepository handles definition-related database operations.
type DefinitionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDefinitionRepository creates a new definition repository.
func NewDefinitionRepository(db *sql.DB, logger *slog.Logger) *DefinitionRepository {
	return &DefinitionRepository{db: db, logger: logger}
}

// GetAll returns all definitions from the database, newest first.
func (r *DefinitionRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , graph
		  , version
		  , created_at
		  , updated_at
		FROM definitions
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	definitions := make([]*models.WorkflowDefinition, 0)

	for rows.Next() {
		def, err := r.scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}

		definitions = append(definitions, def)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating definitions: %w", err)
	}

	return definitions, nil
}

// GetByID returns a definition by its ID, or (nil, nil) when absent.
func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , graph
		  , version
		  , created_at
		  , updated_at
		FROM definitions
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	def, err := r.scanDefinition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan definition: %w", err)
	}

	return def, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DefinitionRepository) scanDefinition(row rowScanner) (*models.WorkflowDefinition, error) {
	var (
		def       models.WorkflowDefinition
		graphJSON []byte
	)

	err := row.Scan(
		&def.ID,
		&def.Name,
		&def.Description,
		&graphJSON,
		&def.Version,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(graphJSON, &def.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph for definition %s: %w", def.ID, err)
	}

	def.Graph.Normalize()

	return &def, nil
}

// Save persists a definition. The row is locked for the duration of the
// version check so concurrent saves of the same definition serialize instead
// of both succeeding.
func (r *DefinitionRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var storedVersion int64

	err = tx.QueryRowContext(ctx, "SELECT version FROM definitions WHERE id = $1 FOR UPDATE", def.ID).Scan(&storedVersion)

	exists := true

	if errors.Is(err, sql.ErrNoRows) {
		exists = false
		err = nil
	} else if err != nil {
		return fmt.Errorf("failed to read stored version for %s: %w", def.ID, err)
	}

	if exists && storedVersion != def.Version {
		err = persistence.NewDefinitionError("Save", def.ID, persistence.ErrVersionConflict)

		return err
	}

	now := time.Now().UTC()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}

	def.UpdatedAt = now
	def.Version++

	def.Graph.Normalize()

	graphJSON, err := json.Marshal(def.Graph)
	if err != nil {
		return fmt.Errorf("failed to marshal graph for definition %s: %w", def.ID, err)
	}

	query := `
		INSERT INTO definitions (id, name, description, graph, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , graph = EXCLUDED.graph
		  , version = EXCLUDED.version
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, query,
		def.ID,
		def.Name,
		def.Description,
		graphJSON,
		def.Version,
		def.CreatedAt,
		def.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save definition %s: %w", def.ID, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit definition %s: %w", def.ID, err)
	}

	return nil
}

// Delete removes a definition by its ID. Deleting a missing definition is a no-op.
func (r *DefinitionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM definitions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	return nil
}
