package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/safety"
)

// Request converts the case into an engine request.
func (c Case) Request() safety.Request {
	return safety.Request{
		Intent:          c.Intent,
		Message:         c.Message,
		Profile:         c.Profile,
		Language:        match.ParseLanguage(c.Language),
		MatchedConcepts: c.Concepts,
		Context:         c.Context,
	}
}

// Check compares a decision with the case expectations and returns
// the list of failures. An empty list means the case passed.
func Check(c Case, d safety.Decision) []string {
	var res []string
	e := c.Expect

	if e.BlockLevel != "" {
		want, ok := kb.ParseLevel(e.BlockLevel)
		switch {
		case !ok:
			res = append(res, fmt.Sprintf("unknown expected block_level %q", e.BlockLevel))
		case want != d.BlockLevel:
			res = append(res, fmt.Sprintf("block_level: want %s, got %s", want, d.BlockLevel))
		}
	}

	for _, f := range e.RequiredFields {
		if !slices.Contains(d.RequiredFields, f) {
			res = append(res, fmt.Sprintf("required_fields: missing %s", f))
		}
	}

	for _, id := range e.Rules {
		if !d.HasRule(id) {
			res = append(res, fmt.Sprintf("rules: %s did not match", id))
		}
	}

	for _, id := range e.NotRules {
		if d.HasRule(id) {
			res = append(res, fmt.Sprintf("not_rules: %s matched", id))
		}
	}
	return res
}

// NewResult builds the result of a case from its decision.
func NewResult(runID, caseID string, c Case, d safety.Decision, dur time.Duration) Result {
	failures := Check(c, d)
	rules := make([]string, 0, len(d.MatchedRules))
	for _, r := range d.MatchedRules {
		rules = append(rules, r.ID)
	}
	return Result{
		RunID:          runID,
		CaseID:         caseID,
		Name:           c.Name,
		Pass:           len(failures) == 0,
		BlockLevel:     d.BlockLevel,
		DecisionSource: d.DecisionSource,
		LegacyFallback: d.Diagnostics.LegacyFallbackUsed,
		Rules:          rules,
		Failures:       failures,
		Duration:       dur,
	}
}

// Summarize counts results. KB fields and timing are left to the
// caller.
func Summarize(runID string, results []Result) Summary {
	res := Summary{
		RunID:   runID,
		Total:   len(results),
		ByLevel: make(map[string]int),
	}
	for _, r := range results {
		if r.Pass {
			res.Passed++
		} else {
			res.Failed++
		}
		if r.LegacyFallback {
			res.LegacyFallbacks++
		}
		res.ByLevel[r.BlockLevel.String()]++
	}
	return res
}

// Failed returns results that did not pass, in input order.
func Failed(results []Result) []Result {
	var res []Result
	for _, r := range results {
		if !r.Pass {
			res = append(res, r)
		}
	}
	return res
}

// FailureText joins failures of a result for display.
func (r Result) FailureText() string {
	return strings.Join(r.Failures, "; ")
}
