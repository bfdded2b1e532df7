// Package kb holds the knowledge base data model: concepts, ingredients,
// safety rules, interaction rules and climate normals, the functions that
// normalize raw decoded JSON into those records, and the two-pass build
// that merges duplicate concepts and backfills synthetic ones.
//
// Everything here is pure. Reading files, validating the manifest and
// caching live in internal/iokb.
package kb

import "time"

// Required table files and the manifest file of a KB directory.
const (
	ConceptDictionaryFile  = "concept_dictionary.v0.json"
	IngredientOntologyFile = "ingredient_ontology.v0.json"
	SafetyRulesFile        = "safety_rules.v0.json"
	InteractionRulesFile   = "interaction_rules.v0.json"
	ClimateNormalsFile     = "climate_normals.v0.json"
	ManifestFile           = "kb_v0_manifest.json"
)

// RequiredFiles lists the five tables in load order.
var RequiredFiles = []string{
	ConceptDictionaryFile,
	IngredientOntologyFile,
	SafetyRulesFile,
	InteractionRulesFile,
	ClimateNormalsFile,
}

// UnknownVersion is used when a table does not declare kb_version.
const UnknownVersion = "unknown"

// Source is a provenance record. Its shape is owned by KB authors.
type Source map[string]any

// Labels are bilingual display names.
type Labels struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// RegexHints are regular expressions authored per language.
type RegexHints struct {
	EN []string `json:"en"`
	ZH []string `json:"zh"`
}

// Concept is a canonical tag such as RETINOID or BARRIER_COMPROMISED.
type Concept struct {
	// ID is upper-case and unique after merge.
	ID          string     `json:"concept_id"`
	Labels      Labels     `json:"labels"`
	SynonymsEN  []string   `json:"synonyms_en"`
	SynonymsZH  []string   `json:"synonyms_zh"`
	INCIAliases []string   `json:"inci_aliases"`
	RegexHints  RegexHints `json:"regex_hints"`
	Notes       string     `json:"notes,omitempty"`
	Sources     []Source   `json:"sources,omitempty"`
	// Synthetic is true for placeholders created for referenced but
	// undeclared identifiers.
	Synthetic bool `json:"synthetic"`
}

// CommonNames are per-language ingredient names.
type CommonNames struct {
	EN []string `json:"en"`
	ZH []string `json:"zh"`
}

// Ingredient is a row of the ingredient ontology.
type Ingredient struct {
	// ID is lower-case.
	ID          string      `json:"ingredient_id"`
	INCI        string      `json:"inci"`
	CommonNames CommonNames `json:"common_names"`
	// Classes are concept identifiers, upper-case.
	Classes    []string `json:"classes"`
	Attributes []string `json:"attributes"`
	// ContraindicationTags are lower-case, e.g. pregnancy_avoid.
	ContraindicationTags []string `json:"contraindication_tags"`
	EvidenceLevel        string   `json:"evidence_level"`
	Notes                string   `json:"notes,omitempty"`
	Sources              []Source `json:"sources,omitempty"`
}

// LifeStage holds allow-lists a profile must satisfy. Empty lists do
// not constrain.
type LifeStage struct {
	PregnancyStatus []string `json:"pregnancy_status"`
	LactationStatus []string `json:"lactation_status"`
	AgeBand         []string `json:"age_band"`
	MedicationsAny  []string `json:"medications_any"`
}

// Trigger describes when a safety rule fires.
type Trigger struct {
	LifeStage LifeStage `json:"life_stage"`
	// ConceptsAny is the primary concept set.
	ConceptsAny []string `json:"concepts_any"`
	// ConceptsAny2 is an optional secondary set with OR semantics.
	ConceptsAny2 []string `json:"concepts_any_2"`
	// RequiredContextMissing lists context keys that must be absent.
	RequiredContextMissing []string `json:"required_context_missing"`
}

// RuleDecision is the consequence of a fired rule.
type RuleDecision struct {
	BlockLevel               Level    `json:"block_level"`
	RequiredFields           []string `json:"required_fields"`
	BlockedConcepts          []string `json:"blocked_concepts"`
	SafeAlternativesConcepts []string `json:"safe_alternatives_concepts"`
	TemplateID               string   `json:"template_id,omitempty"`
}

// SafetyRule is a KB-authored contraindication rule.
type SafetyRule struct {
	ID          string       `json:"rule_id"`
	Category    string       `json:"category"`
	Trigger     Trigger      `json:"trigger"`
	Decision    RuleDecision `json:"decision"`
	Rationale   string       `json:"rationale,omitempty"`
	Uncertainty string       `json:"uncertainty,omitempty"`
	Sources     []Source     `json:"sources,omitempty"`
}

// Template is a bilingual message referenced by rules.
type Template struct {
	ID     string `json:"template_id"`
	TextEN string `json:"text_en"`
	TextZH string `json:"text_zh"`
}

// InteractionRule is a pairwise concept conflict.
type InteractionRule struct {
	ID                string   `json:"interaction_id"`
	ConceptA          string   `json:"concept_a"`
	ConceptB          string   `json:"concept_b"`
	RiskLevel         string   `json:"risk_level"`
	RecommendedAction string   `json:"recommended_action"`
	Notes             string   `json:"notes,omitempty"`
	Uncertainty       string   `json:"uncertainty,omitempty"`
	Sources           []Source `json:"sources,omitempty"`
}

// MonthProfile is the climate of a region in one month.
type MonthProfile struct {
	Month     int      `json:"month"`
	UVLevel   string   `json:"uv_level"`
	Humidity  string   `json:"humidity"`
	TempSwing string   `json:"temp_swing"`
	Wind      string   `json:"wind"`
	Pollution string   `json:"pollution"`
	Sources   []Source `json:"sources,omitempty"`
}

// ClimateRegion is a row of climate normals.
type ClimateRegion struct {
	ID            string         `json:"region_id"`
	Labels        Labels         `json:"labels"`
	Hemisphere    string         `json:"hemisphere"`
	Archetype     string         `json:"archetype"`
	MonthProfiles []MonthProfile `json:"month_profiles"`
}

// ConceptDictionary is the parsed concept table.
type ConceptDictionary struct {
	KBVersion string    `json:"kb_version"`
	Concepts  []Concept `json:"concepts"`
}

// IngredientOntology is the parsed ingredient table.
type IngredientOntology struct {
	KBVersion   string       `json:"kb_version"`
	Ingredients []Ingredient `json:"ingredients"`
}

// SafetyRuleSet is the parsed rules table with its templates.
type SafetyRuleSet struct {
	KBVersion string       `json:"kb_version"`
	Rules     []SafetyRule `json:"rules"`
	Templates []Template   `json:"templates"`
}

// InteractionRuleSet is the parsed interaction table.
type InteractionRuleSet struct {
	KBVersion    string            `json:"kb_version"`
	Interactions []InteractionRule `json:"interactions"`
}

// ClimateNormals is the parsed climate table.
type ClimateNormals struct {
	KBVersion string          `json:"kb_version"`
	Regions   []ClimateRegion `json:"regions"`
}

// Tables groups the five parsed tables before compilation.
type Tables struct {
	Concepts     ConceptDictionary
	Ingredients  IngredientOntology
	Rules        SafetyRuleSet
	Interactions InteractionRuleSet
	Climate      ClimateNormals
}

// ManifestEntry describes one file of a KB release.
type ManifestEntry struct {
	Filename string `json:"filename"`
	// Bytes is nil when the manifest does not declare a size.
	Bytes  *int64 `json:"bytes,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
}

// Manifest is the release descriptor of a KB directory.
type Manifest struct {
	KBVersion    string          `json:"kb_version"`
	GeneratedUTC string          `json:"generated_utc"`
	Files        []ManifestEntry `json:"files"`
}

// ManifestValidation is the outcome of checking a manifest against the
// files on disk. It is data, never an error.
type ManifestValidation struct {
	KBVersion    string          `json:"kb_version"`
	GeneratedUTC string          `json:"generated_utc"`
	Files        []ManifestEntry `json:"files"`
	Errors       []string        `json:"errors"`
	OK           bool            `json:"ok"`
}

// Diagnostics collect non-fatal findings of a load.
type Diagnostics struct {
	DuplicateConceptIDs    []string `json:"duplicate_concept_ids"`
	SyntheticConceptIDs    []string `json:"missing_concept_ids"`
	SyntheticConceptsCount int      `json:"synthetic_concepts_count"`
	ManifestErrors         []string `json:"manifest_errors"`
	Warnings               []string `json:"warnings,omitempty"`
}

// KB is a compiled knowledge base. It is immutable once returned by a
// loader and is replaced as a whole when the files change.
type KB struct {
	SourceDir string    `json:"source_dir"`
	FailMode  string    `json:"fail_mode"`
	LoadedAt  time.Time `json:"loaded_at"`
	KBVersion string    `json:"kb_version"`

	// Concepts holds declared concepts in file order followed by
	// synthetic ones.
	Concepts     []Concept           `json:"concepts"`
	ConceptsByID map[string]*Concept `json:"-"`
	Ingredients  []Ingredient        `json:"ingredients"`
	Rules        []SafetyRule        `json:"rules"`
	// TemplatesByID indexes rule message templates.
	TemplatesByID map[string]Template `json:"templates_by_id"`
	Interactions  []InteractionRule   `json:"interactions"`
	Regions       []ClimateRegion     `json:"regions"`

	Diagnostics Diagnostics        `json:"diagnostics"`
	Manifest    ManifestValidation `json:"manifest"`
}

// Concept returns a concept by identifier in any case.
func (k *KB) Concept(id string) (*Concept, bool) {
	if k == nil {
		return nil, false
	}
	c, ok := k.ConceptsByID[normalizeID(id)]
	return c, ok
}

// Template returns a template by identifier.
func (k *KB) Template(id string) (Template, bool) {
	if k == nil {
		return Template{}, false
	}
	t, ok := k.TemplatesByID[id]
	return t, ok
}

// Result is what a loader returns. KB is nil unless OK is true.
type Result struct {
	OK          bool        `json:"ok"`
	Disabled    bool        `json:"disabled"`
	SourceDir   string      `json:"source_dir"`
	FailMode    string      `json:"fail_mode"`
	Reason      string      `json:"reason,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics"`
	KB          *KB         `json:"-"`
}

// Loader reads and compiles a KB directory.
type Loader interface {
	// Load returns a compiled KB for dir (empty means the configured
	// directory). Repeated calls without file changes return the same
	// *Result. Under fail-closed policy load problems are errors,
	// under fail-open they are reported in Result.
	Load(dir string) (*Result, error)

	// Reload is Load that ignores the cache.
	Reload(dir string) (*Result, error)
}
