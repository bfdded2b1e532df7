package kb

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gnames/gnlib"
)

// The Parse functions accept a value decoded from JSON into `any` and
// return canonical records. Rows without an identifier are dropped,
// strings are trimmed and list fields are deduplicated case-insensitively
// keeping the first occurrence. Malformed input never fails.

type caseMode int

const (
	keepCase caseMode = iota
	upperCase
	lowerCase
)

// ParseConceptDictionary normalizes the concept table.
func ParseConceptDictionary(raw any) ConceptDictionary {
	obj := asObject(raw)
	res := ConceptDictionary{KBVersion: asString(obj["kb_version"], UnknownVersion)}
	for _, v := range asArray(obj["concepts"]) {
		if c, ok := normalizeConcept(v); ok {
			res.Concepts = append(res.Concepts, c)
		}
	}
	return res
}

// ParseIngredientOntology normalizes the ingredient table.
func ParseIngredientOntology(raw any) IngredientOntology {
	obj := asObject(raw)
	res := IngredientOntology{KBVersion: asString(obj["kb_version"], UnknownVersion)}
	for _, v := range asArray(obj["ingredients"]) {
		if ing, ok := normalizeIngredient(v); ok {
			res.Ingredients = append(res.Ingredients, ing)
		}
	}
	return res
}

// ParseSafetyRules normalizes the rules table and its templates.
func ParseSafetyRules(raw any) SafetyRuleSet {
	obj := asObject(raw)
	res := SafetyRuleSet{KBVersion: asString(obj["kb_version"], UnknownVersion)}
	for _, v := range asArray(obj["rules"]) {
		if r, ok := normalizeSafetyRule(v); ok {
			res.Rules = append(res.Rules, r)
		}
	}
	for _, v := range asArray(obj["templates"]) {
		if t, ok := normalizeTemplate(v); ok {
			res.Templates = append(res.Templates, t)
		}
	}
	return res
}

// ParseInteractionRules normalizes the interaction table.
func ParseInteractionRules(raw any) InteractionRuleSet {
	obj := asObject(raw)
	res := InteractionRuleSet{KBVersion: asString(obj["kb_version"], UnknownVersion)}
	for _, v := range asArray(obj["interactions"]) {
		if ir, ok := normalizeInteraction(v); ok {
			res.Interactions = append(res.Interactions, ir)
		}
	}
	return res
}

// ParseClimateNormals normalizes the climate table.
func ParseClimateNormals(raw any) ClimateNormals {
	obj := asObject(raw)
	res := ClimateNormals{KBVersion: asString(obj["kb_version"], UnknownVersion)}
	for _, v := range asArray(obj["regions"]) {
		if r, ok := normalizeRegion(v); ok {
			res.Regions = append(res.Regions, r)
		}
	}
	return res
}

// ParseManifest normalizes a manifest. File entries without a name are
// dropped, a non-numeric bytes value counts as undeclared.
func ParseManifest(raw any) Manifest {
	obj := asObject(raw)
	res := Manifest{
		KBVersion:    asString(obj["kb_version"], UnknownVersion),
		GeneratedUTC: asString(obj["generated_utc"], UnknownVersion),
	}
	for _, v := range asArray(obj["files"]) {
		row, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name := asString(row["filename"], "")
		if name == "" {
			continue
		}
		mf := ManifestEntry{
			Filename: name,
			SHA256:   strings.ToLower(asString(row["sha256"], "")),
		}
		if n, ok := asNumber(row["bytes"]); ok {
			b := int64(n)
			mf.Bytes = &b
		}
		res.Files = append(res.Files, mf)
	}
	return res
}

func normalizeConcept(raw any) (Concept, bool) {
	row := asObject(raw)
	id := normalizeID(asString(row["concept_id"], ""))
	if id == "" {
		return Concept{}, false
	}
	hints := asObject(row["regex_hints"])
	return Concept{
		ID:          id,
		Labels:      normalizeLabels(row["labels"], id, id),
		SynonymsEN:  uniqueStrings(asStrings(row["synonyms_en"]), keepCase),
		SynonymsZH:  uniqueStrings(asStrings(row["synonyms_zh"]), keepCase),
		INCIAliases: uniqueStrings(asStrings(row["inci_aliases"]), keepCase),
		RegexHints: RegexHints{
			EN: uniqueStrings(asStrings(hints["en"]), keepCase),
			ZH: uniqueStrings(asStrings(hints["zh"]), keepCase),
		},
		Notes:   asString(row["notes"], ""),
		Sources: asSources(row["sources"]),
	}, true
}

func normalizeIngredient(raw any) (Ingredient, bool) {
	row := asObject(raw)
	id := strings.ToLower(asString(row["ingredient_id"], ""))
	if id == "" {
		return Ingredient{}, false
	}
	names := asObject(row["common_names"])
	return Ingredient{
		ID:   id,
		INCI: asString(row["inci"], ""),
		CommonNames: CommonNames{
			EN: uniqueStrings(asStrings(names["en"]), keepCase),
			ZH: uniqueStrings(asStrings(names["zh"]), keepCase),
		},
		Classes:              uniqueStrings(asStrings(row["classes"]), upperCase),
		Attributes:           uniqueStrings(asStrings(row["attributes"]), lowerCase),
		ContraindicationTags: uniqueStrings(asStrings(row["contraindication_tags"]), lowerCase),
		EvidenceLevel:        strings.ToLower(asString(row["evidence_level"], "unknown")),
		Notes:                asString(row["notes"], ""),
		Sources:              asSources(row["sources"]),
	}, true
}

func normalizeTemplate(raw any) (Template, bool) {
	row := asObject(raw)
	id := asString(row["template_id"], "")
	if id == "" {
		return Template{}, false
	}
	return Template{
		ID:     id,
		TextEN: asString(row["text_en"], ""),
		TextZH: asString(row["text_zh"], ""),
	}, true
}

func normalizeSafetyRule(raw any) (SafetyRule, bool) {
	row := asObject(raw)
	id := asString(row["rule_id"], "")
	if id == "" {
		return SafetyRule{}, false
	}
	trigger := asObject(row["trigger"])
	decision := asObject(row["decision"])
	stage := asObject(trigger["life_stage"])
	level, _ := ParseLevel(asString(decision["block_level"], "INFO"))

	return SafetyRule{
		ID:       id,
		Category: asString(row["category"], "unknown"),
		Trigger: Trigger{
			LifeStage: LifeStage{
				PregnancyStatus: uniqueStrings(asStrings(stage["pregnancy_status"]), lowerCase),
				LactationStatus: uniqueStrings(asStrings(stage["lactation_status"]), lowerCase),
				AgeBand:         uniqueStrings(asStrings(stage["age_band"]), lowerCase),
				MedicationsAny:  uniqueStrings(asStrings(stage["medications_any"]), lowerCase),
			},
			ConceptsAny:            uniqueStrings(asStrings(trigger["concepts_any"]), upperCase),
			ConceptsAny2:           uniqueStrings(asStrings(trigger["concepts_any_2"]), upperCase),
			RequiredContextMissing: uniqueStrings(asStrings(trigger["required_context_missing"]), lowerCase),
		},
		Decision: RuleDecision{
			BlockLevel:               level,
			RequiredFields:           uniqueStrings(asStrings(decision["required_fields"]), lowerCase),
			BlockedConcepts:          uniqueStrings(asStrings(decision["blocked_concepts"]), upperCase),
			SafeAlternativesConcepts: uniqueStrings(asStrings(decision["safe_alternatives_concepts"]), upperCase),
			TemplateID:               asString(decision["template_id"], ""),
		},
		Rationale:   asString(row["rationale"], ""),
		Uncertainty: asString(row["uncertainty"], ""),
		Sources:     asSources(row["sources"]),
	}, true
}

func normalizeInteraction(raw any) (InteractionRule, bool) {
	row := asObject(raw)
	id := asString(row["interaction_id"], "")
	if id == "" {
		return InteractionRule{}, false
	}
	return InteractionRule{
		ID:                id,
		ConceptA:          normalizeID(asString(row["concept_a"], "")),
		ConceptB:          normalizeID(asString(row["concept_b"], "")),
		RiskLevel:         strings.ToLower(asString(row["risk_level"], "medium")),
		RecommendedAction: strings.ToLower(asString(row["recommended_action"], "ok_with_caution")),
		Notes:             asString(row["notes"], ""),
		Uncertainty:       asString(row["uncertainty"], ""),
		Sources:           asSources(row["sources"]),
	}, true
}

func normalizeRegion(raw any) (ClimateRegion, bool) {
	row := asObject(raw)
	id := asString(row["region_id"], "")
	if id == "" {
		return ClimateRegion{}, false
	}
	res := ClimateRegion{
		ID:         id,
		Labels:     normalizeLabels(row["labels"], id, id),
		Hemisphere: strings.ToLower(asString(row["hemisphere"], "mixed")),
		Archetype:  strings.ToLower(asString(row["archetype"], "temperate_continental")),
	}
	for _, v := range asArray(row["month_profiles"]) {
		p, ok := v.(map[string]any)
		if !ok {
			continue
		}
		month, ok := asNumber(p["month"])
		if !ok {
			continue
		}
		res.MonthProfiles = append(res.MonthProfiles, MonthProfile{
			Month:     min(12, max(1, int(math.Trunc(month)))),
			UVLevel:   strings.ToLower(asString(p["uv_level"], "medium")),
			Humidity:  strings.ToLower(asString(p["humidity"], "balanced")),
			TempSwing: strings.ToLower(asString(p["temp_swing"], "medium")),
			Wind:      strings.ToLower(asString(p["wind"], "medium")),
			Pollution: strings.ToLower(asString(p["pollution"], "medium")),
			Sources:   asSources(p["sources"]),
		})
	}
	return res, true
}

func normalizeLabels(raw any, fallbackEN, fallbackZH string) Labels {
	obj := asObject(raw)
	en := asString(obj["en"], fallbackEN)
	zh := asString(obj["zh"], fallbackZH)
	res := Labels{EN: en, ZH: zh}
	if res.EN == "" {
		res.EN = zh
	}
	if res.ZH == "" {
		res.ZH = en
	}
	if res.EN == "" {
		res.EN = "Unknown concept"
	}
	if res.ZH == "" {
		res.ZH = "未知概念"
	}
	return res
}

func normalizeID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// asString converts scalars to trimmed strings. Empty results and
// non-scalar values give the fallback.
func asString(v any, fallback string) string {
	var res string
	switch s := v.(type) {
	case string:
		res = s
	case float64:
		res = strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		res = s.String()
	case int:
		res = strconv.Itoa(s)
	case int64:
		res = strconv.FormatInt(s, 10)
	case bool:
		res = strconv.FormatBool(s)
	}
	res = strings.TrimSpace(gnlib.FixUtf8(res))
	if res == "" {
		return fallback
	}
	return res
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asArray(v any) []any {
	if res, ok := v.([]any); ok {
		return res
	}
	return nil
}

func asObject(v any) map[string]any {
	if res, ok := v.(map[string]any); ok {
		return res
	}
	return map[string]any{}
}

func asStrings(v any) []string {
	arr := asArray(v)
	res := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := asString(item, ""); s != "" {
			res = append(res, s)
		}
	}
	return res
}

func asSources(v any) []Source {
	var res []Source
	for _, item := range asArray(v) {
		if obj, ok := item.(map[string]any); ok {
			res = append(res, Source(obj))
		}
	}
	return res
}

// uniqueStrings trims, optionally changes case, and drops empty values
// and case-insensitive repeats.
func uniqueStrings(vals []string, mode caseMode) []string {
	res := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch mode {
		case upperCase:
			v = strings.ToUpper(v)
		case lowerCase:
			v = strings.ToLower(v)
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, v)
	}
	return res
}

// UniqueStrings deduplicates case-insensitively keeping the first
// occurrence and its case.
func UniqueStrings(vals ...[]string) []string {
	var all []string
	for _, v := range vals {
		all = append(all, v...)
	}
	return uniqueStrings(all, keepCase)
}
