// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowpad/flowpad/pkg/persistence"
	"github.com/flowpad/flowpad/pkg/persistence/file"
	"github.com/flowpad/flowpad/pkg/persistence/postgres"
)

// NewPersistence selects a persistence backend from the database URL scheme:
// postgres:// and postgresql:// use PostgreSQL, anything else is treated as a
// filesystem root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres":
		return postgres.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch provider {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return "file"
	}
}
