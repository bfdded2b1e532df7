// Package schema provides table models for stored replay runs. The
// same models serve gorm AutoMigrate on PostgreSQL and plain DDL on
// SQLite, so column types stay within what both accept.
package schema

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/gnames/gnuuid"
)

// DDLGenerator defines how Go models generate DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the table name for this model.
	TableName() string
}

// ReplayRun is the summary of one replay run.
type ReplayRun struct {
	// ID is a random UUID of the run.
	ID string `db:"id" ddl:"VARCHAR(36) PRIMARY KEY" gorm:"column:id;primaryKey;type:varchar(36)"`

	// KBVersion is the version of the knowledge base used by the run.
	KBVersion string `db:"kb_version" ddl:"VARCHAR(100)" gorm:"column:kb_version;type:varchar(100)"`

	// KBAvailable is false when the run used static rules only.
	KBAvailable bool `db:"kb_available" ddl:"BOOLEAN NOT NULL DEFAULT FALSE" gorm:"column:kb_available;not null;default:false"`

	Total           int `db:"total" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"column:total;not null;default:0"`
	Passed          int `db:"passed" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"column:passed;not null;default:0"`
	Failed          int `db:"failed" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"column:failed;not null;default:0"`
	LegacyFallbacks int `db:"legacy_fallbacks" ddl:"INTEGER NOT NULL DEFAULT 0" gorm:"column:legacy_fallbacks;not null;default:0"`

	// ByLevel is a JSON object with counts per block level.
	ByLevel string `db:"by_level" ddl:"TEXT" gorm:"column:by_level;type:text"`

	// StartedAt is when the run started.
	StartedAt time.Time `db:"started_at" ddl:"TIMESTAMP" gorm:"column:started_at;type:timestamp"`

	// DurationMS is the wall time of the run in milliseconds.
	DurationMS int64 `db:"duration_ms" ddl:"BIGINT" gorm:"column:duration_ms;type:bigint"`
}

// ReplayResult is the outcome of one case in a run.
type ReplayResult struct {
	// ID is UUID v5 of run id and case id.
	ID string `db:"id" ddl:"VARCHAR(36) PRIMARY KEY" gorm:"column:id;primaryKey;type:varchar(36)"`

	// RunID refers to ReplayRun.ID.
	RunID string `db:"run_id" ddl:"VARCHAR(36) NOT NULL" gorm:"column:run_id;type:varchar(36);not null;index:idx_replay_results_run"`

	// CaseID is UUID v5 of the case name.
	CaseID string `db:"case_id" ddl:"VARCHAR(36) NOT NULL" gorm:"column:case_id;type:varchar(36);not null"`

	Name string `db:"name" ddl:"TEXT" gorm:"column:name;type:text"`

	Pass bool `db:"pass" ddl:"BOOLEAN NOT NULL DEFAULT FALSE" gorm:"column:pass;not null;default:false"`

	// BlockLevel is the wire name of the decision level.
	BlockLevel string `db:"block_level" ddl:"VARCHAR(20)" gorm:"column:block_level;type:varchar(20);index:idx_replay_results_level"`

	DecisionSource string `db:"decision_source" ddl:"VARCHAR(20)" gorm:"column:decision_source;type:varchar(20)"`

	LegacyFallback bool `db:"legacy_fallback" ddl:"BOOLEAN NOT NULL DEFAULT FALSE" gorm:"column:legacy_fallback;not null;default:false"`

	// Rules is a pipe-delimited list of matched rule ids.
	Rules string `db:"rules" ddl:"TEXT" gorm:"column:rules;type:text"`

	// Failures is a pipe-delimited list of failed expectations.
	Failures string `db:"failures" ddl:"TEXT" gorm:"column:failures;type:text"`

	DurationMS int64 `db:"duration_ms" ddl:"BIGINT" gorm:"column:duration_ms;type:bigint"`
}

// FromRun converts a replay run into table rows.
func FromRun(run report.Run) (ReplayRun, []ReplayResult) {
	s := run.Summary
	byLevel, _ := json.Marshal(s.ByLevel)
	res := ReplayRun{
		ID:              s.RunID,
		KBVersion:       s.KBVersion,
		KBAvailable:     s.KBAvailable,
		Total:           s.Total,
		Passed:          s.Passed,
		Failed:          s.Failed,
		LegacyFallbacks: s.LegacyFallbacks,
		ByLevel:         string(byLevel),
		StartedAt:       s.StartedAt.UTC(),
		DurationMS:      s.Duration.Milliseconds(),
	}

	rows := make([]ReplayResult, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, ReplayResult{
			ID:             gnuuid.New(r.RunID + "|" + r.CaseID).String(),
			RunID:          r.RunID,
			CaseID:         r.CaseID,
			Name:           r.Name,
			Pass:           r.Pass,
			BlockLevel:     r.BlockLevel.String(),
			DecisionSource: r.DecisionSource,
			LegacyFallback: r.LegacyFallback,
			Rules:          strings.Join(r.Rules, "|"),
			Failures:       strings.Join(r.Failures, "|"),
			DurationMS:     r.Duration.Milliseconds(),
		})
	}
	return res, rows
}
