// Package safety decides how an assistant answer must be constrained
// for a given user message and profile. Three rule sources contribute:
// KB-authored rules, contraindication tags of the ingredient ontology,
// and a static legacy rule set that is always available. Their matches
// are merged into a single Decision with the most severe level of the
// lattice INFO < WARN < REQUIRE_INFO < BLOCK.
package safety

import (
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
)

// Sources of matched rules.
const (
	SourceKB       = "kb"
	SourceOntology = "ontology"
	SourceLegacy   = "legacy"
)

// Trigger categories, in the order they appear in Decision.TriggeredBy.
const (
	TriggerConcepts    = "concepts"
	TriggerLifeStage   = "life_stage"
	TriggerMedications = "medications"
	TriggerIngredients = "ingredients"
)

var triggerOrder = []string{
	TriggerConcepts, TriggerLifeStage, TriggerMedications, TriggerIngredients,
}

// Profile is what is known about the user. All fields are free text
// and get normalized before evaluation.
type Profile struct {
	PregnancyStatus     string   `json:"pregnancy_status,omitempty" yaml:"pregnancy_status"`
	LactationStatus     string   `json:"lactation_status,omitempty" yaml:"lactation_status"`
	AgeBand             string   `json:"age_band,omitempty" yaml:"age_band"`
	HighRiskMedications []string `json:"high_risk_medications,omitempty" yaml:"high_risk_medications"`
	BarrierStatus       string   `json:"barrier_status,omitempty" yaml:"barrier_status"`
	Sensitivity         string   `json:"sensitivity,omitempty" yaml:"sensitivity"`
}

// Request is the input of one evaluation.
type Request struct {
	Intent   string
	Message  string
	Profile  Profile
	Language match.Language

	// MatchedConcepts are concept hints computed by the caller. They are
	// merged with the matcher output.
	MatchedConcepts []string

	// IngredientHits are ingredient matches computed by the caller. They
	// are merged with the matcher output.
	IngredientHits []match.IngredientHit

	// Context carries extra facts such as product_anchor that
	// required_context_missing may ask about.
	Context map[string]string
}

// MatchedRule is the consequence of one fired rule before merging.
type MatchedRule struct {
	ID                string
	Source            string
	Level             kb.Level
	Categories        []string
	Reason            string
	RequiredFields    []string
	RequiredQuestions []string
	Alternatives      []string
}

// RuleRef identifies a matched rule in the decision record.
type RuleRef struct {
	ID    string   `json:"id"`
	Level kb.Level `json:"level"`
}

// Diagnostics describe how a decision was reached.
type Diagnostics struct {
	LegacyFallbackUsed bool     `json:"legacy_fallback_used"`
	FallbackReason     string   `json:"fallback_reason,omitempty"`
	KBAvailable        bool     `json:"kb_available"`
	KBVersion          string   `json:"kb_version,omitempty"`
	Concepts           []string `json:"concepts"`
	Medications        []string `json:"medications"`
	PregnancyStatus    string   `json:"pregnancy_status"`
	LactationStatus    string   `json:"lactation_status"`
	AgeBand            string   `json:"age_band"`
}

// Decision is the merged outcome of an evaluation.
type Decision struct {
	BlockLevel        kb.Level    `json:"block_level"`
	DecisionSource    string      `json:"decision_source"`
	TriggeredBy       []string    `json:"triggered_by"`
	Reasons           []string    `json:"reasons"`
	RequiredFields    []string    `json:"required_fields"`
	RequiredQuestions []string    `json:"required_questions"`
	SafeAlternatives  []string    `json:"safe_alternatives"`
	MatchedRules      []RuleRef   `json:"matched_rules"`
	Diagnostics       Diagnostics `json:"diagnostics"`
}

// HasRule reports if a rule with the given id matched.
func (d Decision) HasRule(id string) bool {
	for _, v := range d.MatchedRules {
		if v.ID == id {
			return true
		}
	}
	return false
}

// Evaluator is one source of safety rules.
type Evaluator interface {
	// Name is the source of the rules the evaluator produces.
	Name() string

	// Evaluate returns the rules that fire for the context, in
	// evaluation order. Implementations must not modify the context.
	Evaluate(c *Context) []MatchedRule
}
