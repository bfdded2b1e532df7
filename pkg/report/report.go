// Package report describes replay runs: cases with expectations, the
// per-case results of running them through the rule engine and the
// run summary. Persistence is behind the Store interface.
package report

import (
	"context"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/safety"
)

// Expect lists what a case asserts about its decision. Empty fields
// are not checked.
type Expect struct {
	// BlockLevel is the exact expected level (INFO, WARN, REQUIRE_INFO,
	// BLOCK).
	BlockLevel string `yaml:"block_level" json:"block_level,omitempty"`

	// RequiredFields must all be present in the decision.
	RequiredFields []string `yaml:"required_fields" json:"required_fields,omitempty"`

	// Rules must all be among the matched rules.
	Rules []string `yaml:"rules" json:"rules,omitempty"`

	// NotRules must not be among the matched rules.
	NotRules []string `yaml:"not_rules" json:"not_rules,omitempty"`
}

// Case is one replay scenario.
type Case struct {
	Name     string            `yaml:"name" json:"name"`
	Intent   string            `yaml:"intent" json:"intent,omitempty"`
	Message  string            `yaml:"message" json:"message"`
	Language string            `yaml:"language" json:"language,omitempty"`
	Profile  safety.Profile    `yaml:"profile" json:"profile"`
	Concepts []string          `yaml:"concepts" json:"concepts,omitempty"`
	Context  map[string]string `yaml:"context" json:"context,omitempty"`
	Expect   Expect            `yaml:"expect" json:"expect"`
}

// Result is the outcome of one case.
type Result struct {
	RunID          string        `json:"run_id"`
	CaseID         string        `json:"case_id"`
	Name           string        `json:"name"`
	Pass           bool          `json:"pass"`
	BlockLevel     kb.Level      `json:"block_level"`
	DecisionSource string        `json:"decision_source"`
	LegacyFallback bool          `json:"legacy_fallback"`
	Rules          []string      `json:"rules"`
	Failures       []string      `json:"failures,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Summary aggregates the results of a run.
type Summary struct {
	RunID           string         `json:"run_id"`
	KBVersion       string         `json:"kb_version"`
	KBAvailable     bool           `json:"kb_available"`
	Total           int            `json:"total"`
	Passed          int            `json:"passed"`
	Failed          int            `json:"failed"`
	LegacyFallbacks int            `json:"legacy_fallbacks"`
	ByLevel         map[string]int `json:"by_level"`
	StartedAt       time.Time      `json:"started_at"`
	Duration        time.Duration  `json:"duration"`
}

// Run is a complete replay run.
type Run struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Store persists replay runs.
type Store interface {
	// Open prepares the storage, creating tables when needed.
	Open(ctx context.Context) error

	// Save writes the run summary and all its results.
	Save(ctx context.Context, run Run) error

	// Close releases the storage.
	Close() error
}
