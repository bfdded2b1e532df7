package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "skinsafety"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "skinsafety"),
		},
		{
			msg: "data dir",
			fn:  config.DataDir,
			res: filepath.Join(tempHome, ".local", "share", "skinsafety", "kb_v0"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "skinsafety", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "skinsafety", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.KB.Dir)
	assert.False(t, cfg.KB.Disable)
	assert.Equal(t, config.FailOpen, cfg.KB.FailMode)
	assert.False(t, cfg.KB.FailClosed())

	assert.Equal(t, 64, cfg.Matcher.MaxConcepts)
	assert.Equal(t, 24, cfg.Matcher.MaxIngredients)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "skinsafety", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 5_000, cfg.Database.BatchSize)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)

	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
}

func TestKBOptions(t *testing.T) {
	tests := []struct {
		msg      string
		opts     []config.Option
		dir      string
		disable  bool
		failMode string
	}{
		{
			msg:      "defaults",
			failMode: "open",
		},
		{
			msg:      "dir is trimmed",
			opts:     []config.Option{config.OptKBDir("  /srv/kb  ")},
			dir:      "/srv/kb",
			failMode: "open",
		},
		{
			msg:      "empty dir is ignored",
			opts:     []config.Option{config.OptKBDir("  ")},
			failMode: "open",
		},
		{
			msg:      "disable",
			opts:     []config.Option{config.OptKBDisable(true)},
			disable:  true,
			failMode: "open",
		},
		{
			msg:      "closed in any case",
			opts:     []config.Option{config.OptKBFailMode(" CLOSED ")},
			failMode: "closed",
		},
		{
			msg:      "unknown fail mode is ignored",
			opts:     []config.Option{config.OptKBFailMode("strict")},
			failMode: "open",
		},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update(v.opts)
		assert.Equal(t, v.dir, cfg.KB.Dir, v.msg)
		assert.Equal(t, v.disable, cfg.KB.Disable, v.msg)
		assert.Equal(t, v.failMode, cfg.KB.FailMode, v.msg)
	}
}

func TestKBDir(t *testing.T) {
	cfg := config.New()
	assert.Equal(t, "", cfg.KBDir())

	cfg.Update([]config.Option{config.OptHomeDir("/home/user")})
	assert.Equal(t, config.DataDir("/home/user"), cfg.KBDir())

	cfg.Update([]config.Option{config.OptKBDir("/srv/kb")})
	assert.Equal(t, "/srv/kb", cfg.KBDir())
}

func TestIntOptions(t *testing.T) {
	tests := []struct {
		msg string
		opt config.Option
		get func(*config.Config) int
		res int
	}{
		{
			msg: "max concepts",
			opt: config.OptMatcherMaxConcepts(10),
			get: func(c *config.Config) int { return c.Matcher.MaxConcepts },
			res: 10,
		},
		{
			msg: "negative max concepts",
			opt: config.OptMatcherMaxConcepts(-1),
			get: func(c *config.Config) int { return c.Matcher.MaxConcepts },
			res: 64,
		},
		{
			msg: "max ingredients",
			opt: config.OptMatcherMaxIngredients(5),
			get: func(c *config.Config) int { return c.Matcher.MaxIngredients },
			res: 5,
		},
		{
			msg: "zero max ingredients",
			opt: config.OptMatcherMaxIngredients(0),
			get: func(c *config.Config) int { return c.Matcher.MaxIngredients },
			res: 24,
		},
		{
			msg: "port",
			opt: config.OptDatabasePort(6543),
			get: func(c *config.Config) int { return c.Database.Port },
			res: 6543,
		},
		{
			msg: "batch size",
			opt: config.OptDatabaseBatchSize(100),
			get: func(c *config.Config) int { return c.Database.BatchSize },
			res: 100,
		},
		{
			msg: "jobs",
			opt: config.OptJobsNumber(3),
			get: func(c *config.Config) int { return c.JobsNumber },
			res: 3,
		},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update([]config.Option{v.opt})
		assert.Equal(t, v.res, v.get(cfg), v.msg)
	}
}

func TestEnumOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLogLevel("DEBUG"),
		config.OptLogFormat("text"),
		config.OptLogDestination("stderr"),
		config.OptDatabaseSSLMode("require"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)
	assert.Equal(t, "require", cfg.Database.SSLMode)

	cfg.Update([]config.Option{
		config.OptLogLevel("verbose"),
		config.OptLogFormat("tint"),
		config.OptLogDestination("stdin"),
		config.OptDatabaseSSLMode("allow"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptKBDir("/srv/kb"),
		config.OptKBDisable(true),
		config.OptKBFailMode("closed"),
		config.OptMatcherMaxConcepts(12),
		config.OptDatabaseHost("db.local"),
		config.OptLogLevel("warn"),
		config.OptJobsNumber(2),
		config.OptHomeDir("/home/user"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, src.KB, dst.KB)
	assert.Equal(t, src.Matcher, dst.Matcher)
	assert.Equal(t, src.Database, dst.Database)
	assert.Equal(t, src.Log, dst.Log)
	assert.Equal(t, src.JobsNumber, dst.JobsNumber)
	assert.Empty(t, dst.HomeDir, "home dir is runtime-only")
}
