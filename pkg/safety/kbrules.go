package safety

import (
	"fmt"
	"strings"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
)

// isotretinoinParityRules are KB rules that are BLOCK in the legacy rule
// set when the user is on isotretinoin.
var isotretinoinParityRules = map[string]struct{}{
	"SR_ISO_ACID_EXFOLIANT":   {},
	"SR_ISO_TOPICAL_RETINOID": {},
	"SR_ISO_BPO":              {},
	"SR_ISO_PEEL":             {},
	"SR_ISO_PHYSICAL_SCRUB":   {},
}

// isotretinoinParityConcepts make an isotretinoin-restricted rule part
// of the parity set.
var isotretinoinParityConcepts = map[string]struct{}{
	"AHA":                {},
	"BHA":                {},
	"PHA":                {},
	"GLYCOLIC_ACID":      {},
	"LACTIC_ACID":        {},
	"MANDELIC_ACID":      {},
	"SALICYLIC_ACID":     {},
	"STRONG_EXFOLIANT":   {},
	"RETINOID":           {},
	"BENZOYL_PEROXIDE":   {},
	"PEEL_AGGRESSIVE":    {},
	"CHEMICAL_PEEL":      {},
	"PHYSICAL_EXFOLIANT": {},
	"SCRUB":              {},
}

type kbEvaluator struct{}

// NewKBEvaluator returns the evaluator of KB-authored safety rules.
func NewKBEvaluator() Evaluator {
	return kbEvaluator{}
}

func (kbEvaluator) Name() string { return SourceKB }

func (kbEvaluator) Evaluate(c *Context) []MatchedRule {
	var res []MatchedRule
	if c.KB == nil {
		return res
	}
	for i := range c.KB.Rules {
		r := &c.KB.Rules[i]
		ok := guard(SourceKB, r.ID, func() bool { return ruleFires(c, r) })
		if !ok {
			continue
		}
		res = append(res, kbMatch(c, r))
	}
	return res
}

// ruleFires applies the trigger of a KB rule to the context.
func ruleFires(c *Context, r *kb.SafetyRule) bool {
	t := &r.Trigger
	ls := &t.LifeStage
	if len(ls.PregnancyStatus) == 0 && len(ls.LactationStatus) == 0 &&
		len(ls.AgeBand) == 0 && len(ls.MedicationsAny) == 0 &&
		len(t.ConceptsAny) == 0 && len(t.ConceptsAny2) == 0 &&
		len(t.RequiredContextMissing) == 0 {
		return false
	}

	if len(ls.PregnancyStatus) > 0 &&
		!allowed(ls.PregnancyStatus, NormalizePregnancy, c.Pregnancy) {
		return false
	}
	if len(ls.LactationStatus) > 0 &&
		!allowed(ls.LactationStatus, NormalizeLactation, c.Lactation) {
		return false
	}
	if len(ls.AgeBand) > 0 && !ageAllowed(ls.AgeBand, c) {
		return false
	}
	if len(ls.MedicationsAny) > 0 {
		var hit bool
		for _, v := range ls.MedicationsAny {
			if c.HasMedication(CanonicalMedication(v)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	for _, key := range t.RequiredContextMissing {
		if !c.contextMissing(key) {
			return false
		}
	}

	if !primaryConceptsHit(c, t.ConceptsAny) {
		return false
	}
	if len(t.ConceptsAny2) > 0 {
		var hit bool
		for _, id := range t.ConceptsAny2 {
			if c.HasConcept(id) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// allowed normalizes an allow-list with the same function as the
// profile value and looks the value up.
func allowed(list []string, normalize func(string) string, val string) bool {
	for _, v := range list {
		if normalize(v) == val {
			return true
		}
	}
	return false
}

func ageAllowed(list []string, c *Context) bool {
	for _, v := range list {
		band, raw := NormalizeAgeBand(v)
		if band == c.AgeBand || (raw != "" && raw == c.AgeRaw) {
			return true
		}
	}
	return false
}

// primaryConceptsHit applies two-tier matching. One required concept
// needs one hit. Two or more need at least two hits, and one of them
// must be an anchor when anchors are among the required concepts.
func primaryConceptsHit(c *Context, required []string) bool {
	if len(required) == 0 {
		return true
	}
	var hits int
	var hasAnchor, anchorHit bool
	for _, id := range required {
		anchor := IsAnchor(id)
		hasAnchor = hasAnchor || anchor
		if !c.HasConcept(id) {
			continue
		}
		hits++
		anchorHit = anchorHit || anchor
	}
	if len(required) == 1 {
		return hits == 1
	}
	if hits < 2 {
		return false
	}
	return !hasAnchor || anchorHit
}

// inParitySet reports if a WARN rule escalates to BLOCK for a user on
// isotretinoin.
func inParitySet(r *kb.SafetyRule) bool {
	if _, ok := isotretinoinParityRules[strings.ToUpper(r.ID)]; ok {
		return true
	}
	var restricted bool
	for _, v := range r.Trigger.LifeStage.MedicationsAny {
		if CanonicalMedication(v) == MedIsotretinoin {
			restricted = true
			break
		}
	}
	if !restricted {
		return false
	}
	for _, ids := range [][]string{
		r.Trigger.ConceptsAny, r.Trigger.ConceptsAny2, r.Decision.BlockedConcepts,
	} {
		for _, id := range ids {
			if _, ok := isotretinoinParityConcepts[strings.ToUpper(id)]; ok {
				return true
			}
		}
	}
	return false
}

func kbMatch(c *Context, r *kb.SafetyRule) MatchedRule {
	level := r.Decision.BlockLevel
	if level == kb.Warn && c.Isotretinoin && inParitySet(r) {
		level = kb.Block
	}

	res := MatchedRule{
		ID:             r.ID,
		Source:         SourceKB,
		Level:          level,
		Categories:     kbCategories(r),
		Reason:         kbReason(c, r),
		RequiredFields: r.Decision.RequiredFields,
	}
	for _, f := range r.Decision.RequiredFields {
		if q, ok := fieldQuestions[strings.ToLower(f)]; ok {
			res.RequiredQuestions = append(res.RequiredQuestions, q.pick(c.Language))
		}
	}
	for _, id := range r.Decision.SafeAlternativesConcepts {
		res.Alternatives = append(res.Alternatives, conceptLabel(c, id))
	}
	return res
}

func kbCategories(r *kb.SafetyRule) []string {
	var res []string
	t := &r.Trigger
	if len(t.ConceptsAny) > 0 || len(t.ConceptsAny2) > 0 {
		res = append(res, TriggerConcepts)
	}
	ls := &t.LifeStage
	if len(ls.PregnancyStatus) > 0 || len(ls.LactationStatus) > 0 || len(ls.AgeBand) > 0 {
		res = append(res, TriggerLifeStage)
	}
	if len(ls.MedicationsAny) > 0 {
		res = append(res, TriggerMedications)
	}
	return res
}

func kbReason(c *Context, r *kb.SafetyRule) string {
	if t, ok := c.KB.Template(r.Decision.TemplateID); ok {
		txt := text{EN: t.TextEN, CN: t.TextZH}.pick(c.Language)
		if txt != "" {
			return txt
		}
	}
	if rat := strings.TrimSpace(r.Rationale); rat != "" {
		return rat
	}
	return text{
		EN: fmt.Sprintf("Safety rule %s applies.", r.ID),
		CN: fmt.Sprintf("命中安全规则 %s。", r.ID),
	}.pick(c.Language)
}

// conceptLabel is the display name of a concept in the context
// language, or its id.
func conceptLabel(c *Context, id string) string {
	concept, ok := c.KB.Concept(id)
	if !ok {
		return id
	}
	lbl := text{EN: concept.Labels.EN, CN: concept.Labels.ZH}.pick(c.Language)
	if lbl == "" {
		return concept.ID
	}
	return lbl
}

// text is a bilingual string.
type text struct {
	EN string
	CN string
}

// pick returns the text of lang, falling back to the other language.
func (t text) pick(lang match.Language) string {
	en, cn := strings.TrimSpace(t.EN), strings.TrimSpace(t.CN)
	if lang == match.CN {
		if cn != "" {
			return cn
		}
		return en
	}
	if en != "" {
		return en
	}
	return cn
}

var fieldQuestions = map[string]text{
	"pregnancy_status": {
		EN: "Are you currently pregnant or trying to conceive?",
		CN: "你当前是否怀孕或备孕？",
	},
	"lactation_status": {
		EN: "Are you currently breastfeeding?",
		CN: "你当前是否在哺乳期？",
	},
	"age_band": {
		EN: "Which age band are you in?",
		CN: "请问你的年龄段是？",
	},
	"high_risk_medications": {
		EN: "Are you currently using any prescription acne medication?",
		CN: "你当前是否在使用处方祛痘药？",
	},
	"barrier_status": {
		EN: "Is your skin currently stinging, flaking or easily irritated?",
		CN: "你的皮肤最近是否有刺痛、脱皮或容易泛红？",
	},
	"sensitivity": {
		EN: "How sensitive is your skin (low / medium / high)?",
		CN: "你的皮肤敏感程度如何（低/中/高）？",
	},
}
