package ioschema

import (
	"fmt"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when schema
// operation is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to the report database with GORM

<em>How to fix:</em>
  1. Ensure the database operator is connected
  2. Check SKINSAFETY_DATABASE_* settings`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// CreateSchemaError creates an error for report table
// creation failures.
func CreateSchemaError(err error) error {
	msg := `Cannot create replay report tables

<em>Possible causes:</em>
  - Insufficient database permissions
  - A table with the same name and a different layout exists

<em>How to fix:</em>
  1. Check database user has CREATE permissions
  2. Check database logs for details`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to create schema: %w", err),
	}
}

// MigrateSchemaError creates an error for report table
// migration failures.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate replay report tables

<em>How to fix:</em>
  1. Check database user has ALTER permissions
  2. Drop old report tables if their data is not needed`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to migrate schema: %w", err),
	}
}
