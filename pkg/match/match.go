// Package match resolves free text to knowledge base concepts and
// ingredient ontology rows. This is a pure package - matching is
// computation over a compiled KB, not I/O.
package match

import (
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
)

// Stage is the index tier that produced a concept match.
type Stage string

const (
	StageExact     Stage = "exact"
	StageRegex     Stage = "regex"
	StageSubstring Stage = "substring"
)

// Priority orders stages: exact > regex > substring.
func (s Stage) Priority() int {
	switch s {
	case StageExact:
		return 3
	case StageRegex:
		return 2
	default:
		return 1
	}
}

// Language restricts index terms and queries.
type Language string

const (
	EN  Language = "EN"
	CN  Language = "CN"
	Any Language = "ANY"
)

// ConceptMatch is a concept found in a text.
type ConceptMatch struct {
	ConceptID   string   `json:"concept_id"`
	Stage       Stage    `json:"stage"`
	Source      string   `json:"source"`
	MatchedText string   `json:"matched_text"`
	Language    Language `json:"language"`
}

// Detailed holds ranked matches and, for debugging, every raw hit of
// every tier.
type Detailed struct {
	Matches []ConceptMatch `json:"matched_concepts"`
	Debug   []ConceptMatch `json:"matched_concepts_debug"`
}

// IngredientHit is an ingredient ontology row found in a text.
type IngredientHit struct {
	IngredientID         string   `json:"ingredient_id"`
	MatchedText          string   `json:"matched_text"`
	Source               string   `json:"source"`
	Classes              []string `json:"classes"`
	ContraindicationTags []string `json:"contraindication_tags"`
	EvidenceLevel        string   `json:"evidence_level"`
}

// IndexStats describe the index compiled for a KB.
type IndexStats struct {
	Concepts        int `json:"concepts"`
	ExactTerms      int `json:"exact_terms"`
	RegexTerms      int `json:"regex_terms"`
	SubstringTerms  int `json:"substring_terms"`
	IngredientTerms int `json:"ingredient_terms"`
	// InvalidRegex counts regex hints RE2 cannot compile. They are
	// skipped.
	InvalidRegex int `json:"invalid_regex"`
}

// Matcher finds concepts and ingredients in free text. The index is
// built once per *kb.KB and reused while the same KB is passed in.
// Implementations are safe for concurrent use.
type Matcher interface {
	// MatchConcepts returns concept matches ordered by stage priority and
	// concept id, capped at max after ranking. Zero or negative max
	// means the configured default.
	MatchConcepts(k *kb.KB, text string, lang Language, max int) []ConceptMatch

	// MatchConceptsDetailed is MatchConcepts that also returns raw hits.
	// With substring false the substring tier is skipped.
	MatchConceptsDetailed(
		k *kb.KB, text string, lang Language, max int, substring bool,
	) Detailed

	// MatchIngredients returns ingredient hits ordered by ingredient id.
	// For each ingredient the longest matched term is kept.
	MatchIngredients(k *kb.KB, text string, lang Language, max int) []IngredientHit

	// Stats returns the statistics of the index built for k.
	Stats(k *kb.KB) IndexStats
}

// ConceptIDs returns the concept ids of matches in their order.
func ConceptIDs(matches []ConceptMatch) []string {
	res := make([]string, len(matches))
	for i := range matches {
		res[i] = matches[i].ConceptID
	}
	return res
}

// New creates a Matcher with the limits from cfg.
func New(cfg config.MatcherConfig) Matcher {
	res := &matcher{
		maxConcepts:    cfg.MaxConcepts,
		maxIngredients: cfg.MaxIngredients,
	}
	if res.maxConcepts <= 0 {
		res.maxConcepts = 64
	}
	if res.maxIngredients <= 0 {
		res.maxIngredients = 24
	}
	return res
}
