package safety_test

import (
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/safety"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePregnancy(t *testing.T) {
	tests := []struct {
		msg, input, res string
	}{
		{"empty", "", safety.Unknown},
		{"pregnant", "Pregnant", safety.Pregnant},
		{"negated", "not_pregnant", safety.NotPregnant},
		{"negated spaced", "Not pregnant", safety.NotPregnant},
		{"trying", "trying to conceive", safety.Trying},
		{"trying to get pregnant", "trying to get pregnant", safety.Trying},
		{"not sure", "not sure if pregnant", safety.Unknown},
		{"cn pregnant", "孕期", safety.Pregnant},
		{"cn trying", "备孕中", safety.Trying},
		{"cn negated", "没有怀孕", safety.NotPregnant},
		{"garbage", "blue", safety.Unknown},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, safety.NormalizePregnancy(v.input), v.msg)
	}
}

func TestNormalizeLactation(t *testing.T) {
	tests := []struct {
		msg, input, res string
	}{
		{"empty", "", safety.Unknown},
		{"lactating synonym", "lactating", safety.Breastfeeding},
		{"breastfeeding", "Breastfeeding", safety.Breastfeeding},
		{"negated", "not_lactating", safety.NotLactating},
		{"negated breastfeeding", "not breastfeeding", safety.NotLactating},
		{"cn", "哺乳期", safety.Breastfeeding},
		{"cn negated", "非哺乳", safety.NotLactating},
		{"unknown", "unsure", safety.Unknown},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, safety.NormalizeLactation(v.input), v.msg)
	}
}

func TestNormalizeAgeBand(t *testing.T) {
	tests := []struct {
		msg, input, band, raw string
	}{
		{"empty", "", safety.Unknown, ""},
		{"under 13", "under_13", safety.AgeChild, "under_13"},
		{"teen range", "13-17", safety.AgeTeen, "13_17"},
		{"adult range", "18_24", safety.AgeAdult, "18_24"},
		{"open range", "55+", safety.AgeAdult, "55_plus"},
		{"plain age", "16", safety.AgeTeen, "16"},
		{"plain child age", "9", safety.AgeChild, "9"},
		{"band name", "Adult", safety.AgeAdult, "adult"},
		{"cn", "青少年", safety.AgeTeen, "青少年"},
		{"unknown", "not sure", safety.Unknown, "not_sure"},
	}
	for _, v := range tests {
		band, raw := safety.NormalizeAgeBand(v.input)
		assert.Equal(t, v.band, band, v.msg)
		assert.Equal(t, v.raw, raw, v.msg)
	}
}

func TestCanonicalMedication(t *testing.T) {
	tests := []struct {
		msg, input, res string
	}{
		{"empty", " ", ""},
		{"brand", "Accutane", safety.MedIsotretinoin},
		{"generic", "isotretinoin 20mg", safety.MedIsotretinoin},
		{"cn", "异维A酸", safety.MedIsotretinoin},
		{"cn brand", "泰尔丝", safety.MedIsotretinoin},
		{"tretinoin is topical", "Tretinoin 0.025%", safety.MedTopicalRetinoid},
		{"adapalene", "Differin gel", safety.MedTopicalRetinoid},
		{"cn topical", "维A酸乳膏", safety.MedTopicalRetinoid},
		{"steroid", "hydrocortisone", safety.MedTopicalSteroid},
		{"antibiotic", "Doxycycline", safety.MedOralAntibiotic},
		{"spironolactone", "spironolactone", safety.MedSpironolactone},
		{"contraceptive", "birth control pill", safety.MedHormonalContraceptive},
		{"other", "Metformin XR", "metformin_xr"},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, safety.CanonicalMedication(v.input), v.msg)
	}
}

func TestInferFromMessage(t *testing.T) {
	preg := []struct {
		msg, input, res string
	}{
		{"statement", "i am pregnant and need a cream", safety.Pregnant},
		{"curly apostrophe", "i’m pregnant", safety.Pregnant},
		{"topic", "is this safe during pregnancy?", safety.Pregnant},
		{"trying", "i'm ttc right now", safety.Trying},
		{"negated", "i'm not pregnant", safety.NotPregnant},
		{"cn trying", "我在备孕", safety.Trying},
		{"cn negated", "我没有怀孕", safety.NotPregnant},
		{"nothing", "dry skin in winter", safety.Unknown},
	}
	for _, v := range preg {
		assert.Equal(t, v.res, safety.InferPregnancy(v.input), v.msg)
	}

	lact := []struct {
		msg, input, res string
	}{
		{"statement", "i am breastfeeding", safety.Breastfeeding},
		{"topic", "safe while nursing?", safety.Breastfeeding},
		{"negated", "i'm not breastfeeding", safety.NotLactating},
		{"cn", "哺乳期能用吗", safety.Breastfeeding},
		{"nothing", "oily t-zone", safety.Unknown},
	}
	for _, v := range lact {
		assert.Equal(t, v.res, safety.InferLactation(v.input), v.msg)
	}
}

func TestContextConcepts(t *testing.T) {
	c := safety.NewContext(nil, nil, safety.Request{
		Intent:          "product_eval",
		Message:         "Glycolic acid toner with BPO",
		MatchedConcepts: []string{"niacinamide", "AHA"},
		IngredientHits: []match.IngredientHit{
			{IngredientID: "tea_tree_oil", Classes: []string{"ESSENTIAL_OIL"}},
		},
		Profile: safety.Profile{BarrierStatus: "Impaired", Sensitivity: "High"},
	})
	assert.Equal(t, []string{
		"NIACINAMIDE", "AHA", "ESSENTIAL_OIL", "BENZOYL_PEROXIDE",
		"STRONG_EXFOLIANT", "BARRIER_COMPROMISED", "SENSITIVE_SKIN",
		"PRODUCT_EVAL_REQUEST",
	}, c.Concepts)
	assert.True(t, c.HasConcept("aha"))
	assert.True(t, c.BarrierCompromised)
	assert.True(t, c.SensitivityHigh)
	assert.Equal(t, "impaired", c.BarrierStatus)
	assert.Empty(t, c.Medications)
	assert.Equal(t, match.EN, c.Language)
}

func TestContextConceptsNegatedProfile(t *testing.T) {
	c := safety.NewContext(nil, nil, safety.Request{
		Message: "Glycolic acid toner",
		Profile: safety.Profile{BarrierStatus: "not damaged", Sensitivity: "not sensitive"},
	})
	assert.False(t, c.HasConcept("BARRIER_COMPROMISED"))
	assert.False(t, c.HasConcept("SENSITIVE_SKIN"))
	assert.False(t, c.BarrierCompromised)
	assert.False(t, c.SensitivityHigh)
}

func TestBarrierSensitivity(t *testing.T) {
	barrier := []struct {
		msg   string
		input string
		res   bool
	}{
		{"empty", "", false},
		{"impaired", "Impaired", true},
		{"compromised", "compromised", true},
		{"chinese damaged", "受损", true},
		{"not damaged", "not damaged", false},
		{"underscored negation", "barrier_not_damaged", false},
		{"non-compromised", "non-compromised", false},
		{"healthy", "healthy", false},
		{"chinese not damaged", "没有受损", false},
	}
	for _, v := range barrier {
		assert.Equal(t, v.res, safety.BarrierCompromised(v.input), v.msg)
	}

	sens := []struct {
		msg   string
		input string
		res   bool
	}{
		{"empty", "", false},
		{"high", "High", true},
		{"sensitive", "sensitive", true},
		{"skin sensitive", "skin sensitive", true},
		{"chinese sensitive", "敏感", true},
		{"not sensitive", "not sensitive", false},
		{"insensitive", "insensitive", false},
		{"low", "low", false},
		{"medium", "medium", false},
		{"chinese not sensitive", "不敏感", false},
	}
	for _, v := range sens {
		assert.Equal(t, v.res, safety.SensitivityHigh(v.input), v.msg)
	}
}

func TestMentionConcepts(t *testing.T) {
	tests := []struct {
		msg     string
		message string
		has     []string
		hasNot  []string
	}{
		{
			"pha toner", "a gentle pha toner",
			[]string{"PHA", "STRONG_EXFOLIANT"}, []string{"AHA", "BHA"},
		},
		{
			"gluconolactone", "serum with gluconolactone",
			[]string{"PHA"}, nil,
		},
		{
			"strong salicylic", "salicylic acid 30 at home",
			[]string{"BHA", "STRONG_EXFOLIANT"}, []string{"PHA"},
		},
		{
			"daily chinese acids", "每天刷酸可以吗",
			[]string{"STRONG_EXFOLIANT"}, nil,
		},
		{
			"plain moisturizer", "which moisturizer suits dry skin",
			nil, []string{"PHA", "STRONG_EXFOLIANT"},
		},
	}

	for _, v := range tests {
		c := safety.NewContext(nil, nil, safety.Request{Message: v.message})
		for _, id := range v.has {
			assert.True(t, c.HasConcept(id), v.msg+": "+id)
		}
		for _, id := range v.hasNot {
			assert.False(t, c.HasConcept(id), v.msg+": "+id)
		}
	}
}
