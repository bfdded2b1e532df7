// Package db defines the PostgreSQL operator used to export replay
// reports.
package db

import (
	"context"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines the interface for basic database management
// operations. It manages the connection lifecycle and exposes the
// pgxpool.Pool so report stores can run CopyFrom and the schema
// manager can hand the pool to GORM.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool, nil before Connect.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables in the public schema.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	// Used by tests to reset the report database.
	DropAllTables(ctx context.Context) error
}
