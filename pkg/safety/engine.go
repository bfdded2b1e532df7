package safety

import (
	"log/slog"
	"strings"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/telemetry"
)

const (
	maxReasons      = 10
	maxAlternatives = 10
	maxFields       = 4
	maxQuestions    = 4
)

// Engine evaluates requests against KB rules, the ingredient ontology
// and the legacy rule set. It keeps no per-request state and is safe
// for concurrent use.
type Engine struct {
	matcher match.Matcher
	metrics telemetry.Recorder
	kb      Evaluator
	onto    Evaluator
	legacy  Evaluator
}

// New creates an Engine. The matcher may be nil, then only caller
// supplied concept and ingredient hints are used.
func New(m match.Matcher, rec telemetry.Recorder) *Engine {
	return &Engine{
		matcher: m,
		metrics: telemetry.OrNop(rec),
		kb:      NewKBEvaluator(),
		onto:    NewOntologyEvaluator(),
		legacy:  NewLegacyEvaluator(),
	}
}

// Evaluate decides the block level of a request. A nil k means the KB
// is unavailable, then only the legacy rule set applies.
func (e *Engine) Evaluate(k *kb.KB, req Request) Decision {
	c := NewContext(k, e.matcher, req)

	var kbRules []MatchedRule
	if k != nil {
		kbRules = append(kbRules, run(e.kb, c)...)
		kbRules = append(kbRules, run(e.onto, c)...)
	}
	legacy := run(e.legacy, c)

	for _, r := range kbRules {
		e.metrics.RuleMatch(r.Source, r.ID, r.Level.String())
	}

	all := append(append([]MatchedRule{}, kbRules...), legacy...)
	res := merge(all, c.Language)

	res.DecisionSource = SourceLegacy
	if len(kbRules) > 0 {
		res.DecisionSource = SourceKB
	}

	res.Diagnostics = Diagnostics{
		KBAvailable:     k != nil,
		Concepts:        c.Concepts,
		Medications:     c.Medications,
		PregnancyStatus: c.Pregnancy,
		LactationStatus: c.Lactation,
		AgeBand:         c.AgeBand,
	}
	if k != nil {
		res.Diagnostics.KBVersion = k.KBVersion
	}
	if len(kbRules) == 0 && len(legacy) > 0 {
		reason := telemetry.FallbackKBNoMatch
		if k == nil {
			reason = telemetry.FallbackKBUnavailable
		}
		res.Diagnostics.LegacyFallbackUsed = true
		res.Diagnostics.FallbackReason = reason
		e.metrics.LegacyFallback(reason)
	}

	slog.Debug("Safety decision",
		"block_level", res.BlockLevel.String(),
		"decision_source", res.DecisionSource,
		"rules", len(res.MatchedRules),
		"legacy_fallback", res.Diagnostics.LegacyFallbackUsed,
	)
	return res
}

// run calls an evaluator and recovers from a panic of the evaluator as
// a whole. Individual predicates are guarded by the evaluators.
func run(ev Evaluator, c *Context) (res []MatchedRule) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Safety evaluator failed", "source", ev.Name(), "panic", r)
			res = nil
		}
	}()
	return ev.Evaluate(c)
}

// guard evaluates a rule predicate. A panicking predicate is logged
// and counts as not matched.
func guard(source, id string, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Safety rule failed",
				"source", source, "rule_id", id, "panic", r)
			ok = false
		}
	}()
	return fn()
}

// merge folds matched rules into a decision. Reasons and alternatives
// come from all rules with final-level rules first. Required fields and
// questions only come from final-level rules.
func merge(rules []MatchedRule, lang match.Language) Decision {
	res := Decision{
		BlockLevel:        kb.Info,
		TriggeredBy:       []string{},
		Reasons:           []string{},
		RequiredFields:    []string{},
		RequiredQuestions: []string{},
		SafeAlternatives:  []string{},
		MatchedRules:      []RuleRef{},
	}
	for _, r := range rules {
		res.BlockLevel = kb.Max(res.BlockLevel, r.Level)
		res.MatchedRules = append(res.MatchedRules, RuleRef{ID: r.ID, Level: r.Level})
	}

	ordered := make([]MatchedRule, 0, len(rules))
	for _, r := range rules {
		if r.Level == res.BlockLevel {
			ordered = append(ordered, r)
		}
	}
	for _, r := range rules {
		if r.Level != res.BlockLevel {
			ordered = append(ordered, r)
		}
	}

	var reasons, alts, fields, questions []string
	cats := make(map[string]struct{})
	for _, r := range ordered {
		reasons = append(reasons, r.Reason)
		alts = append(alts, r.Alternatives...)
		for _, v := range r.Categories {
			cats[v] = struct{}{}
		}
		if r.Level != res.BlockLevel {
			continue
		}
		fields = append(fields, r.RequiredFields...)
		questions = append(questions, r.RequiredQuestions...)
	}
	if len(fields) > 0 && len(questions) == 0 {
		for _, f := range fields {
			if q, ok := fieldQuestions[strings.ToLower(f)]; ok {
				questions = append(questions, q.pick(lang))
			}
		}
	}

	res.Reasons = dedupe(reasons, maxReasons)
	res.SafeAlternatives = dedupe(alts, maxAlternatives)
	res.RequiredFields = dedupe(fields, maxFields)
	res.RequiredQuestions = dedupe(questions, maxQuestions)
	for _, v := range triggerOrder {
		if _, ok := cats[v]; ok {
			res.TriggeredBy = append(res.TriggeredBy, v)
		}
	}
	return res
}

// dedupe trims values, drops empty ones and case-insensitive
// duplicates, and keeps at most max values.
func dedupe(vals []string, max int) []string {
	res := []string{}
	seen := make(map[string]struct{})
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, v)
		if len(res) >= max {
			break
		}
	}
	return res
}
