package iometrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aurora-skin/skinsafety/internal/iometrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := iometrics.New()
	m.LoaderError("parse_failed")
	m.LoaderError("parse_failed")
	m.LoaderError("manifest_missing")
	m.RuleMatch("kb", "R1", "BLOCK")
	m.LegacyFallback("kb_unavailable")

	n, err := testutil.GatherAndCount(m.Gatherer(),
		"skinsafety_kb_loader_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "two label sets")

	n, err = testutil.GatherAndCount(m.Gatherer(),
		"skinsafety_engine_rule_matches_total",
		"skinsafety_engine_legacy_fallback_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteFile(t *testing.T) {
	m := iometrics.New()
	m.LegacyFallback("kb_no_match")

	path := filepath.Join(t.TempDir(), "skinsafety.prom")
	require.NoError(t, m.WriteFile(path))

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bs),
		`skinsafety_engine_legacy_fallback_total{reason="kb_no_match"} 1`)
}
