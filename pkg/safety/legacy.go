package safety

import "github.com/aurora-skin/skinsafety/pkg/kb"

// legacyRule is a static predicate/consequence pair. The legacy set is
// always evaluated and covers the case of a missing KB.
type legacyRule struct {
	id          string
	level       kb.Level
	categories  []string
	when        func(*Context) bool
	reason      text
	alternative text
	fields      []string
	questions   []text
}

var (
	catLife     = []string{TriggerConcepts, TriggerLifeStage}
	catMeds     = []string{TriggerConcepts, TriggerMedications}
	catConcepts = []string{TriggerConcepts}
)

func pregnant(c *Context) bool      { return c.Pregnancy == Pregnant }
func trying(c *Context) bool        { return c.Pregnancy == Trying }
func breastfeeding(c *Context) bool { return c.Lactation == Breastfeeding }

func barrierFragile(c *Context) bool {
	return c.BarrierCompromised || c.Mentions.BarrierCompromised
}

func onIsotretinoin(c *Context) bool {
	return c.Isotretinoin || c.Mentions.OralIsotretinoin
}

var legacyRules = []legacyRule{
	{
		id:         "P1",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && onIsotretinoin(c) },
		reason: text{
			"Oral isotretinoin is contraindicated during pregnancy.",
			"孕期禁用口服异维A酸。",
		},
		alternative: text{
			"Use gentle cleanser + azelaic-acid-centered routine and consult your clinician.",
			"建议改为温和清洁+壬二酸方向，并咨询医生。",
		},
	},
	{
		id:         "P2",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.Retinoid },
		reason: text{
			"Avoid retinoids during pregnancy as a precaution.",
			"孕期建议避免维A类。",
		},
		alternative: text{
			"Consider azelaic acid, barrier repair, and strict sunscreen.",
			"可考虑壬二酸+屏障修护+严格防晒。",
		},
	},
	{
		id:         "P3",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.Hydroquinone },
		reason: text{
			"Hydroquinone is better avoided during pregnancy.",
			"孕期建议避免氢醌。",
		},
		alternative: text{
			"Use vitamin C or azelaic acid with tinted mineral sunscreen.",
			"可改维C/壬二酸+有色矿物防晒。",
		},
	},
	{
		id:         "P4",
		level:      kb.Warn,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.StrongSalicylic },
		reason: text{
			"High-strength salicylic peels are not first-line in pregnancy.",
			"孕期不建议高浓度水杨酸焕肤。",
		},
		alternative: text{
			"Prefer low-strength options and clinician-guided use.",
			"建议低浓度且在医生指导下使用。",
		},
	},
	{
		id:         "P5",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.AggressivePeel },
		reason: text{
			"Avoid aggressive chemical peel plans during pregnancy.",
			"孕期避免激进刷酸/焕肤方案。",
		},
		alternative: text{
			"Switch to gentle barrier-focused routine.",
			"改为温和修护型方案。",
		},
	},
	{
		id:         "P6",
		level:      kb.RequireInfo,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.Prescription },
		reason: text{
			"Prescription active requested during pregnancy needs a quick safety check.",
			"孕期涉及处方活性，需先补充安全信息。",
		},
		fields: []string{"high_risk_medications"},
		questions: []text{{
			"Are you currently using any prescription acne medication?",
			"你当前是否在使用处方祛痘药？",
		}},
	},
	{
		id:         "P7",
		level:      kb.Warn,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.EssentialOilHeavy },
		reason: text{
			"Essential-oil-heavy leave-ons can increase irritation risk.",
			"精油/重香精留敷类可能提高刺激风险。",
		},
		alternative: text{
			"Prefer fragrance-free products.",
			"建议优先无香精方案。",
		},
	},
	{
		id:         "P8",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return trying(c) && c.Mentions.Retinoid },
		reason: text{
			"Avoid retinoids while trying to conceive.",
			"备孕阶段建议避免维A类。",
		},
		alternative: text{
			"Use safer alternatives (azelaic acid / barrier support).",
			"可选壬二酸/屏障修护替代。",
		},
	},
	{
		id:         "P9",
		level:      kb.Info,
		categories: catLife,
		when:       func(c *Context) bool { return pregnant(c) && c.Mentions.AcneAsk },
		reason: text{
			"Keep acne care conservative during pregnancy.",
			"孕期痘痘护理建议保守方案。",
		},
		alternative: text{
			"Gentle cleanse + azelaic acid + sunscreen can be considered.",
			"可考虑温和清洁+壬二酸+防晒。",
		},
	},
	{
		id:         "P10",
		level:      kb.Block,
		categories: catLife,
		when: func(c *Context) bool {
			return trying(c) && (c.Mentions.Hydroquinone || onIsotretinoin(c))
		},
		reason: text{
			"Avoid hydroquinone and oral isotretinoin while trying to conceive.",
			"备孕阶段建议避免氢醌和口服异维A酸。",
		},
		alternative: text{
			"Azelaic acid and strict sunscreen are safer choices while trying to conceive.",
			"备孕期可改用壬二酸并严格防晒。",
		},
	},
	{
		id:         "L1",
		level:      kb.Block,
		categories: catLife,
		when:       func(c *Context) bool { return breastfeeding(c) && onIsotretinoin(c) },
		reason: text{
			"Do not use oral isotretinoin during breastfeeding.",
			"哺乳期不建议口服异维A酸。",
		},
		alternative: text{
			"Use conservative topical options and consult clinician.",
			"建议保守外用并咨询医生。",
		},
	},
	{
		id:         "L2",
		level:      kb.Warn,
		categories: catLife,
		when: func(c *Context) bool {
			return breastfeeding(c) && c.Mentions.Retinoid && c.Mentions.ChestArea
		},
		reason: text{
			"Avoid applying retinoids on chest/areola while breastfeeding.",
			"哺乳期避免在胸前/乳晕区域使用维A类。",
		},
		alternative: text{
			"Use non-retinoid barrier products for that area.",
			"该区域优先使用非维A修护品。",
		},
	},
	{
		id:         "L3",
		level:      kb.Warn,
		categories: catLife,
		when:       func(c *Context) bool { return breastfeeding(c) && c.Mentions.AggressivePeel },
		reason: text{
			"Strong peel routines can increase irritation during lactation.",
			"哺乳期激进焕肤更易刺激。",
		},
		alternative: text{
			"Prefer gentle routine and reduce active overlap.",
			"建议温和流程并减少活性叠加。",
		},
	},
	{
		id:         "L4",
		level:      kb.Info,
		categories: catLife,
		when: func(c *Context) bool {
			return breastfeeding(c) && c.Mentions.BreastfeedingSafeAsk
		},
		reason: text{
			"A conservative breastfeeding-safe skincare path will be used.",
			"将按哺乳期保守路径给出建议。",
		},
	},
	{
		id:         "L5",
		level:      kb.Warn,
		categories: catLife,
		when:       func(c *Context) bool { return breastfeeding(c) && c.Mentions.Hydroquinone },
		reason: text{
			"Hydroquinone is better avoided while breastfeeding.",
			"哺乳期建议避免氢醌。",
		},
		alternative: text{
			"Use azelaic acid or vitamin C for dark spots instead.",
			"淡斑可改用壬二酸或维C。",
		},
	},
	{
		id:         "I1",
		level:      kb.Warn,
		categories: catConcepts,
		when:       func(c *Context) bool { return barrierFragile(c) && c.Mentions.Retinoid },
		reason: text{
			"Compromised barrier + retinoid increases irritation risk.",
			"屏障受损叠加维A类会明显增加刺激风险。",
		},
		alternative: text{
			"Repair barrier for 2-4 weeks before re-introduction.",
			"建议先修护2-4周再考虑重启。",
		},
	},
	{
		id:         "I2",
		level:      kb.Block,
		categories: catConcepts,
		when: func(c *Context) bool {
			return barrierFragile(c) && c.Mentions.DailyExfoliation
		},
		reason: text{
			"Daily exfoliation is not safe with a compromised barrier.",
			"屏障受损时不建议每天刷酸。",
		},
		alternative: text{
			"Stop acids temporarily and focus on barrier repair.",
			"建议暂停酸类，优先屏障修护。",
		},
	},
	{
		id:         "I3",
		level:      kb.RequireInfo,
		categories: catConcepts,
		when: func(c *Context) bool {
			return c.SensitivityHigh && c.Mentions.MultiActivesRequest
		},
		reason: text{
			"High sensitivity with multiple new actives needs one-priority goal first.",
			"高敏+多活性叠加需先确定单一目标。",
		},
		questions: []text{{
			"Which one is your top goal first (acne / dark spots / anti-aging / redness)?",
			"你当前最优先目标是哪一个（控痘/淡斑/抗老/泛红）？",
		}},
	},
	{
		id:         "I4",
		level:      kb.Warn,
		categories: catConcepts,
		when: func(c *Context) bool {
			return c.Mentions.TravelHighUV && c.Mentions.WantsExfoliation
		},
		reason: text{
			"High UV exposure + exfoliation can raise irritation/pigment risk.",
			"高UV暴露时叠加刷酸会提高刺激和色沉风险。",
		},
		alternative: text{
			"Pause exfoliation before peak sun days and prioritize SPF.",
			"建议高晒前暂停刷酸并优先防晒。",
		},
	},
	{
		id:         "I5",
		level:      kb.Warn,
		categories: catConcepts,
		when:       func(c *Context) bool { return c.Mentions.OvernightFast },
		reason: text{
			"Overnight fast-result requests often lead to over-irritation.",
			"追求一夜见效通常会导致过度刺激。",
		},
		alternative: text{
			"Use incremental frequency and tolerance-first plan.",
			"建议按耐受逐步加频。",
		},
	},
	{
		id:         "I6",
		level:      kb.Warn,
		categories: catConcepts,
		when: func(c *Context) bool {
			return (barrierFragile(c) || c.SensitivityHigh) &&
				(c.Mentions.EssentialOilHeavy || c.Mentions.Fragrance)
		},
		reason: text{
			"Fragrance and essential oils can worsen a fragile barrier.",
			"香精和精油会加重脆弱屏障的刺激。",
		},
		alternative: text{
			"Choose fragrance-free, essential-oil-free formulas.",
			"选择无香精、无精油的配方。",
		},
	},
	{
		id:         "M1",
		level:      kb.Block,
		categories: catMeds,
		when:       func(c *Context) bool { return c.Isotretinoin && c.Mentions.Retinoid },
		reason: text{
			"Oral isotretinoin + topical retinoid stacking is high risk.",
			"口服异维A酸期间叠加维A外用风险高。",
		},
		alternative: text{
			"Use gentle hydration and sunscreen only unless clinician approves.",
			"除医生建议外，优先温和保湿+防晒。",
		},
	},
	{
		id:         "M2",
		level:      kb.Block,
		categories: catMeds,
		when:       func(c *Context) bool { return c.Isotretinoin && c.Mentions.StrongExfoliant },
		reason: text{
			"Oral isotretinoin + strong exfoliants is high irritation risk.",
			"口服异维A酸期间叠加强酸风险高。",
		},
		alternative: text{
			"Avoid strong exfoliants and keep routine minimal.",
			"建议停强酸并保持最简流程。",
		},
	},
	{
		id:         "M3",
		level:      kb.Warn,
		categories: catMeds,
		when: func(c *Context) bool {
			return c.Mentions.TretinoinRx && c.Mentions.AggressivePeel
		},
		reason: text{
			"Prescription tretinoin should not be combined with aggressive peels.",
			"处方维甲酸不应与激进焕肤同用。",
		},
		alternative: text{
			"Choose one active path at a time.",
			"建议一次只走一条活性路径。",
		},
	},
	{
		id:         "M4",
		level:      kb.RequireInfo,
		categories: catMeds,
		when: func(c *Context) bool {
			return c.Mentions.SteroidFace && c.Mentions.StrongExfoliant
		},
		reason: text{
			"Facial steroid context + acids needs clinical safety confirmation.",
			"面部激素使用场景下叠加酸类需先确认安全。",
		},
		fields: []string{"high_risk_medications"},
		questions: []text{{
			"Is the facial steroid currently prescribed by a clinician?",
			"面部激素是否为医生当前处方？",
		}},
	},
	{
		id:         "M5",
		level:      kb.RequireInfo,
		categories: catLife,
		when: func(c *Context) bool {
			return c.Pregnancy == Unknown && c.Mentions.Retinoid
		},
		reason: text{
			"Pregnancy status is needed before retinoid guidance.",
			"给维A建议前需先确认孕期状态。",
		},
		fields: []string{"pregnancy_status"},
		questions: []text{{
			"Are you currently pregnant or trying to conceive?",
			"你当前是否怀孕或备孕？",
		}},
		alternative: text{
			"Until confirmed, use conservative non-retinoid options.",
			"未确认前先走非维A保守方案。",
		},
	},
	{
		id:         "M6",
		level:      kb.RequireInfo,
		categories: catLife,
		when: func(c *Context) bool {
			return c.AgeBand == Unknown && c.Mentions.StrongAntiAging
		},
		reason: text{
			"Age band is needed before strong anti-aging actives.",
			"给高强度抗老活性前需先确认年龄段。",
		},
		fields: []string{"age_band"},
		questions: []text{{
			"Which age band are you in?",
			"请问你的年龄段是？",
		}},
	},
	{
		id:         "M7",
		level:      kb.Block,
		categories: catMeds,
		when: func(c *Context) bool {
			return c.Isotretinoin &&
				(c.Mentions.AggressivePeel || c.Mentions.PhysicalExfoliant)
		},
		reason: text{
			"Peels and scrubs are not safe during oral isotretinoin treatment.",
			"口服异维A酸期间不宜焕肤或使用磨砂去角质。",
		},
		alternative: text{
			"Wait at least six months after finishing isotretinoin before peels.",
			"停药至少六个月后再考虑焕肤。",
		},
	},
	{
		id:         "M8",
		level:      kb.Block,
		categories: catMeds,
		when: func(c *Context) bool {
			return c.Isotretinoin && c.Mentions.BenzoylPeroxide
		},
		reason: text{
			"Benzoyl peroxide on top of oral isotretinoin over-dries and irritates.",
			"口服异维A酸期间叠加过氧化苯甲酰会过度干燥刺激。",
		},
		alternative: text{
			"Keep to a bland moisturizer and sunscreen unless your clinician adds actives.",
			"除医生另有安排，仅用温和保湿和防晒。",
		},
	},
	{
		id:         "A1",
		level:      kb.Block,
		categories: catLife,
		when: func(c *Context) bool {
			return c.AgeBand == AgeChild && (c.Mentions.Retinoid ||
				c.Mentions.Hydroquinone || c.Mentions.AggressivePeel)
		},
		reason: text{
			"Strong actives are not suitable for children without a clinician.",
			"儿童不适合在无医生指导下使用强功效活性。",
		},
		alternative: text{
			"Keep to gentle cleansing, moisturizer and sunscreen.",
			"以温和清洁、保湿和防晒为主。",
		},
	},
	{
		id:         "A2",
		level:      kb.Warn,
		categories: catLife,
		when: func(c *Context) bool {
			return c.AgeBand == AgeTeen &&
				(c.Mentions.AggressivePeel || c.Mentions.Hydroquinone)
		},
		reason: text{
			"Teens should avoid peels and hydroquinone without clinician guidance.",
			"青少年不建议在无医生指导下焕肤或使用氢醌。",
		},
		alternative: text{
			"Start with low-strength, single-active routines.",
			"从低浓度、单一活性开始。",
		},
	},
	{
		id:         "A3",
		level:      kb.Info,
		categories: catLife,
		when:       func(c *Context) bool { return c.AgeBand == AgeTeen && c.Mentions.AcneAsk },
		reason: text{
			"Teen acne care starts gentle and builds up slowly.",
			"青少年控痘建议从温和方案开始逐步加量。",
		},
		alternative: text{
			"Gentle cleanser with low-frequency benzoyl peroxide or adapalene.",
			"温和清洁，低频使用过氧化苯甲酰或阿达帕林。",
		},
	},
}

type legacyEvaluator struct{}

// NewLegacyEvaluator returns the evaluator of the static rule set.
func NewLegacyEvaluator() Evaluator {
	return legacyEvaluator{}
}

func (legacyEvaluator) Name() string { return SourceLegacy }

func (legacyEvaluator) Evaluate(c *Context) []MatchedRule {
	var res []MatchedRule
	for i := range legacyRules {
		r := &legacyRules[i]
		if !guard(SourceLegacy, r.id, func() bool { return r.when(c) }) {
			continue
		}
		mr := MatchedRule{
			ID:             r.id,
			Source:         SourceLegacy,
			Level:          r.level,
			Categories:     r.categories,
			Reason:         r.reason.pick(c.Language),
			RequiredFields: r.fields,
		}
		if alt := r.alternative.pick(c.Language); alt != "" {
			mr.Alternatives = []string{alt}
		}
		for _, q := range r.questions {
			mr.RequiredQuestions = append(mr.RequiredQuestions, q.pick(c.Language))
		}
		res = append(res, mr)
	}
	return res
}
