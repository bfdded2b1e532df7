// Package iotesting provides shared fixtures for tests: a small but
// complete knowledge base written to a temporary directory and a
// configuration that points at a test database.
package iotesting

import (
	"os"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/config"
)

const (
	// TestDatabaseName is the database name used by integration tests.
	// Tests never touch the report database of a real deployment.
	TestDatabaseName = "skinsafety_test"
)

// GetTestConfig returns defaults with the database switched to
// TestDatabaseName. SKINSAFETY_DATABASE_HOST is honoured so CI can
// point tests at a service container.
func GetTestConfig() *config.Config {
	cfg := config.New()
	var opts []config.Option
	if host := os.Getenv("SKINSAFETY_DATABASE_HOST"); host != "" {
		opts = append(opts, config.OptDatabaseHost(host))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))
	cfg.Update(opts)
	return cfg
}

// SetupKBConfig returns a test config that reads the KB from dir under
// the given fail mode.
func SetupKBConfig(t *testing.T, dir, failMode string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptKBDir(dir),
		config.OptKBFailMode(failMode),
		config.OptHomeDir(t.TempDir()),
	})
	return cfg
}
