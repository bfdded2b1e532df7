// Package config provides configuration management for skinsafety.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - KB: dir, disable, fail_mode
//   - Matcher: max_concepts, max_ingredients
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use SKINSAFETY_ prefix with underscores for nesting:
//
//	SKINSAFETY_KB_DIR=/srv/kb_v0
//	SKINSAFETY_KB_DISABLE=false
//	SKINSAFETY_KB_FAIL_MODE=closed
//	SKINSAFETY_LOG_LEVEL=info
//	SKINSAFETY_JOBS_NUMBER=8
//
// The KB settings are read once when a loader is constructed, never per
// evaluation.
package config

import (
	"runtime"
)

// Fail modes for the knowledge base loader.
const (
	// FailOpen serves a degraded result when the KB cannot be loaded.
	FailOpen = "open"
	// FailClosed aborts the load with an error.
	FailClosed = "closed"
)

// Config represents the complete skinsafety configuration.
type Config struct {
	// KB contains the knowledge base loading policy.
	KB KBConfig `mapstructure:"kb" yaml:"kb"`

	// Matcher contains concept and ingredient matching limits.
	Matcher MatcherConfig `mapstructure:"matcher" yaml:"matcher"`

	// Database contains PostgreSQL connection settings used to export
	// replay reports.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for replay runs.
	// Default value is set accoring to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, data and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// KBConfig contains knowledge base loader settings.
type KBConfig struct {
	// Dir is the directory with the KB tables and manifest.
	// Empty value means the default location under HomeDir.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Disable turns the KB off. Loaders return a disabled result and
	// the rule engine works with its static rule set only.
	Disable bool `mapstructure:"disable" yaml:"disable"`

	// FailMode is "open" (degrade and report diagnostics) or "closed"
	// (return an error on missing files or manifest problems).
	FailMode string `mapstructure:"fail_mode" yaml:"fail_mode"`
}

// MatcherConfig limits the size of matcher results.
type MatcherConfig struct {
	// MaxConcepts caps the number of returned concept matches.
	MaxConcepts int `mapstructure:"max_concepts" yaml:"max_concepts"`

	// MaxIngredients caps the number of returned ingredient hits.
	MaxIngredients int `mapstructure:"max_ingredients" yaml:"max_ingredients"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of replay results sent in one CopyFrom call.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		KB: KBConfig{
			FailMode: FailOpen,
		},
		Matcher: MatcherConfig{
			MaxConcepts:    64,
			MaxIngredients: 24,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "skinsafety",
			SSLMode:   "disable",
			BatchSize: 5_000,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}

// KBDir returns the directory the loader should read. An explicit
// KB.Dir wins, otherwise the default data location under HomeDir is used.
func (c *Config) KBDir() string {
	if c.KB.Dir != "" {
		return c.KB.Dir
	}
	if c.HomeDir == "" {
		return ""
	}
	return DataDir(c.HomeDir)
}

// FailClosed reports if the loader must raise on load problems.
func (c KBConfig) FailClosed() bool {
	return c.FailMode == FailClosed
}
