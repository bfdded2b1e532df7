// Package lifecycle defines contracts for managing the replay report
// database.
package lifecycle

import (
	"context"

	"github.com/aurora-skin/skinsafety/pkg/config"
)

// SchemaManager defines the interface for report schema management.
// It uses GORM AutoMigrate for both creation and migration, so calls
// are idempotent.
type SchemaManager interface {
	// Create creates the report tables. Existing tables are kept.
	Create(ctx context.Context, cfg *config.Config) error

	// Migrate updates report tables to the current models.
	Migrate(ctx context.Context, cfg *config.Config) error
}
