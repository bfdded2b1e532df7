package iologger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFile(t *testing.T) {
	orig := slog.Default()
	defer slog.SetDefault(orig)

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "debug", Destination: "file"}
	closeFn, err := Init(dir, cfg)
	require.NoError(t, err)

	slog.Debug("kb loaded", "concepts", 12)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"kb loaded"`)
	assert.Contains(t, string(data), `"concepts":12`)
}

func TestInitFileError(t *testing.T) {
	cfg := config.LogConfig{Destination: "file"}
	_, err := Init(filepath.Join(t.TempDir(), "missing"), cfg)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.CreateLogFileError, gnErr.Code)
}

func TestInitStderr(t *testing.T) {
	orig := slog.Default()
	defer slog.SetDefault(orig)

	closeFn, err := Init("", config.LogConfig{Format: "text", Destination: "stderr"})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		msg   string
		input string
		level slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"info", "info", slog.LevelInfo},
		{"unknown", "verbose", slog.LevelInfo},
	}
	for _, v := range tests {
		assert.Equal(t, v.level, parseLevel(v.input), v.msg)
	}
}
