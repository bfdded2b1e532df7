package safety

import (
	"fmt"
	"strings"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
)

// ontologyRule turns a contraindication tag of a matched ingredient
// into a rule match.
type ontologyRule struct {
	tags       []string
	level      kb.Level
	categories []string
	when       func(*Context) bool
	reason     text // format strings, %s is the ingredient
	fields     []string
}

var ontologyRules = []ontologyRule{
	{
		tags:       []string{"pregnancy_avoid", "pregnancy_contraindicated"},
		level:      kb.Block,
		categories: []string{TriggerIngredients, TriggerLifeStage},
		when: func(c *Context) bool {
			return c.Pregnancy == Pregnant || c.Pregnancy == Trying
		},
		reason: text{
			EN: "%s is not recommended during pregnancy or while trying to conceive.",
			CN: "孕期或备孕期间不建议使用%s。",
		},
	},
	{
		tags:       []string{"pregnancy_avoid", "pregnancy_contraindicated"},
		level:      kb.RequireInfo,
		categories: []string{TriggerIngredients, TriggerLifeStage},
		when:       func(c *Context) bool { return c.Pregnancy == Unknown },
		reason: text{
			EN: "Pregnancy status is needed before advising on %s.",
			CN: "使用%s前需先确认是否怀孕或备孕。",
		},
		fields: []string{"pregnancy_status"},
	},
	{
		tags:       []string{"pregnancy_caution"},
		level:      kb.Warn,
		categories: []string{TriggerIngredients, TriggerLifeStage},
		when: func(c *Context) bool {
			return c.Pregnancy == Pregnant || c.Pregnancy == Trying
		},
		reason: text{
			EN: "Use %s with caution during pregnancy.",
			CN: "孕期使用%s需谨慎。",
		},
	},
	{
		tags:       []string{"lactation_avoid"},
		level:      kb.Block,
		categories: []string{TriggerIngredients, TriggerLifeStage},
		when:       func(c *Context) bool { return c.Lactation == Breastfeeding },
		reason: text{
			EN: "%s is not recommended while breastfeeding.",
			CN: "哺乳期不建议使用%s。",
		},
	},
	{
		tags:       []string{"lactation_caution"},
		level:      kb.Warn,
		categories: []string{TriggerIngredients, TriggerLifeStage},
		when:       func(c *Context) bool { return c.Lactation == Breastfeeding },
		reason: text{
			EN: "Use %s with caution while breastfeeding.",
			CN: "哺乳期使用%s需谨慎。",
		},
	},
	{
		tags:       []string{"barrier_avoid"},
		level:      kb.Block,
		categories: []string{TriggerIngredients},
		when:       func(c *Context) bool { return c.BarrierCompromised },
		reason: text{
			EN: "Avoid %s until your skin barrier has recovered.",
			CN: "屏障恢复前避免使用%s。",
		},
	},
	{
		tags:       []string{"irritant", "barrier_caution"},
		level:      kb.Warn,
		categories: []string{TriggerIngredients},
		when: func(c *Context) bool {
			return c.BarrierCompromised || c.SensitivityHigh
		},
		reason: text{
			EN: "%s can irritate sensitive or compromised skin.",
			CN: "%s可能刺激敏感或受损的皮肤。",
		},
	},
	{
		tags:       []string{"isotretinoin_avoid"},
		level:      kb.Block,
		categories: []string{TriggerIngredients, TriggerMedications},
		when:       func(c *Context) bool { return c.Isotretinoin },
		reason: text{
			EN: "Avoid %s while on oral isotretinoin.",
			CN: "口服异维A酸期间避免使用%s。",
		},
	},
}

type ontologyEvaluator struct{}

// NewOntologyEvaluator returns the evaluator of ingredient
// contraindication tags.
func NewOntologyEvaluator() Evaluator {
	return ontologyEvaluator{}
}

func (ontologyEvaluator) Name() string { return SourceOntology }

func (ontologyEvaluator) Evaluate(c *Context) []MatchedRule {
	var res []MatchedRule
	for _, hit := range c.Ingredients {
		tags := make(map[string]struct{}, len(hit.ContraindicationTags))
		for _, t := range hit.ContraindicationTags {
			tags[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
		for _, r := range ontologyRules {
			tag, ok := firstTag(tags, r.tags)
			if !ok {
				continue
			}
			id := "ONT_" + strings.ToUpper(tag) + ":" + hit.IngredientID
			if !guard(SourceOntology, id, func() bool { return r.when(c) }) {
				continue
			}
			mr := MatchedRule{
				ID:             id,
				Source:         SourceOntology,
				Level:          r.level,
				Categories:     r.categories,
				Reason:         fmt.Sprintf(r.reason.pick(c.Language), ingredientLabel(hit)),
				RequiredFields: r.fields,
			}
			for _, f := range r.fields {
				mr.RequiredQuestions = append(mr.RequiredQuestions,
					fieldQuestions[f].pick(c.Language))
			}
			res = append(res, mr)
		}
	}
	return res
}

func firstTag(tags map[string]struct{}, want []string) (string, bool) {
	for _, v := range want {
		if _, ok := tags[v]; ok {
			return v, true
		}
	}
	return "", false
}

func ingredientLabel(hit match.IngredientHit) string {
	if hit.MatchedText != "" {
		return hit.MatchedText
	}
	return hit.IngredientID
}
