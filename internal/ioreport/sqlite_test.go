package ioreport_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/aurora-skin/skinsafety/internal/ioreport"
	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun() report.Run {
	run := report.Run{
		Summary: report.Summary{
			RunID:       "8b0f7a2e-5b8c-4d55-9a4e-0c3f1f4f9d11",
			KBVersion:   "v0.1.0",
			KBAvailable: true,
			Total:       2,
			Passed:      1,
			Failed:      1,
			ByLevel:     map[string]int{"BLOCK": 1, "WARN": 1},
			StartedAt:   time.Now(),
			Duration:    time.Second,
		},
	}
	run.Results = []report.Result{
		{
			RunID: run.Summary.RunID, CaseID: "c1", Name: "pregnant retinoid",
			Pass: true, BlockLevel: kb.Block, Rules: []string{"KB_PREG_RETINOID_BLOCK"},
		},
		{
			RunID: run.Summary.RunID, CaseID: "c2", Name: "barrier acids",
			BlockLevel: kb.Warn, Failures: []string{"block_level: want BLOCK, got WARN"},
		},
	}
	return run
}

func TestSQLiteStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses SQLite file in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports", "replay.sqlite")
	store := ioreport.NewSQLiteStore(path)
	require.NoError(t, store.Open(ctx))

	run := testRun()
	require.NoError(t, store.Save(ctx, run))

	err := store.Save(ctx, run)
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr, "run ids are unique")
	assert.Equal(t, errcode.ReportSaveError, gnErr.Code)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var total, failed int
	err = db.QueryRow("SELECT total, failed FROM replay_runs WHERE id = ?",
		run.Summary.RunID).Scan(&total, &failed)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, failed)

	var level, failures string
	err = db.QueryRow("SELECT block_level, failures FROM replay_results WHERE case_id = ?",
		"c2").Scan(&level, &failures)
	require.NoError(t, err)
	assert.Equal(t, "WARN", level)
	assert.Equal(t, "block_level: want BLOCK, got WARN", failures)

	store = ioreport.NewSQLiteStore(path)
	require.NoError(t, store.Open(ctx), "tables are created only once")
	require.NoError(t, store.Close())
}

func TestSQLiteStoreNotOpened(t *testing.T) {
	store := ioreport.NewSQLiteStore(filepath.Join(t.TempDir(), "r.sqlite"))
	err := store.Save(context.Background(), testRun())
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.ReportSaveError, gnErr.Code)
	assert.NoError(t, store.Close())
}
