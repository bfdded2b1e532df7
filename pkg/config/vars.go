package config

import (
	"path/filepath"
)

var (
	// MinKBVersion is the oldest knowledge base version the rule engine
	// was written against. Older semantic versions load with a warning.
	MinKBVersion = "v0.1.0"
	// AppName is used in generating file system paths.
	AppName = "skinsafety"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/skinsafety by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files, replay
// reports go there by default.
// Returns ~/.cache/skinsafety by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DataDir returns the default knowledge base directory.
// Returns ~/.local/share/skinsafety/kb_v0 by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "kb_v0")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/skinsafety/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/skinsafety/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
