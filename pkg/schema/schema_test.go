package schema_test

import (
	"testing"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/aurora-skin/skinsafety/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReplayRunTableDDL tests DDL generation for ReplayRun model
func TestReplayRunTableDDL(t *testing.T) {
	r := schema.ReplayRun{}
	ddl := r.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS replay_runs")
	assert.Contains(t, ddl, "id VARCHAR(36) PRIMARY KEY")
	assert.Contains(t, ddl, "by_level TEXT")
	assert.Contains(t, ddl, "started_at TIMESTAMP")
	assert.Empty(t, r.IndexDDL())
	assert.Equal(t, "replay_runs", r.TableName())
}

// TestReplayResultTableDDL tests DDL generation for ReplayResult model
func TestReplayResultTableDDL(t *testing.T) {
	r := schema.ReplayResult{}
	ddl := r.TableDDL()

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS replay_results")
	assert.Contains(t, ddl, "run_id VARCHAR(36) NOT NULL")
	assert.Contains(t, ddl, "pass BOOLEAN NOT NULL DEFAULT FALSE")
	assert.Len(t, r.IndexDDL(), 2)
	assert.Equal(t, "replay_results", r.TableName())
}

func TestColumnsValues(t *testing.T) {
	r := schema.ReplayResult{ID: "id", RunID: "run", Pass: true, DurationMS: 3}
	cols := schema.Columns(r)
	vals := schema.Values(&r)
	require.Len(t, vals, len(cols))
	assert.Equal(t, "id", cols[0])
	assert.Equal(t, "duration_ms", cols[len(cols)-1])
	assert.Equal(t, "run", vals[1])
	assert.Equal(t, int64(3), vals[len(vals)-1])

	assert.Equal(t,
		"INSERT INTO replay_runs (id, kb_version, kb_available, total, passed, "+
			"failed, legacy_fallbacks, by_level, started_at, duration_ms) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		schema.InsertSQL(schema.ReplayRun{}))
}

func TestAllModels(t *testing.T) {
	models := schema.AllModels()
	require.Len(t, models, 2)
	assert.Equal(t, "replay_runs", models[0].TableName())
	assert.Equal(t, "replay_results", models[1].TableName())
}

func TestFromRun(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := report.Run{
		Summary: report.Summary{
			RunID:     "run-1",
			KBVersion: "v0.1.0",
			Total:     1,
			Failed:    1,
			ByLevel:   map[string]int{"BLOCK": 1},
			StartedAt: started,
			Duration:  1500 * time.Millisecond,
		},
		Results: []report.Result{{
			RunID:      "run-1",
			CaseID:     "case-1",
			Name:       "pregnant retinoid",
			BlockLevel: kb.Block,
			Rules:      []string{"KB_PREG_RETINOID_BLOCK", "P1"},
			Failures:   []string{"a", "b"},
			Duration:   2 * time.Millisecond,
		}},
	}
	r, rows := schema.FromRun(run)
	assert.Equal(t, "run-1", r.ID)
	assert.Equal(t, `{"BLOCK":1}`, r.ByLevel)
	assert.Equal(t, int64(1500), r.DurationMS)
	assert.Equal(t, started, r.StartedAt)

	require.Len(t, rows, 1)
	assert.Len(t, rows[0].ID, 36)
	assert.Equal(t, "BLOCK", rows[0].BlockLevel)
	assert.Equal(t, "KB_PREG_RETINOID_BLOCK|P1", rows[0].Rules)
	assert.Equal(t, "a|b", rows[0].Failures)
	assert.Equal(t, int64(2), rows[0].DurationMS)

	_, again := schema.FromRun(run)
	assert.Equal(t, rows[0].ID, again[0].ID)
}
