package match_test

import (
	"sync"
	"testing"

	"github.com/aurora-skin/skinsafety/internal/iotesting"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher() match.Matcher {
	return match.New(config.New().Matcher)
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		msg, input string
		res        match.Language
	}{
		{"cn", "CN", match.CN},
		{"lower cn", " cn ", match.CN},
		{"zh", "zh-Hans", match.CN},
		{"en", "EN", match.EN},
		{"empty", "", match.EN},
		{"other", "fr", match.EN},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, match.ParseLanguage(v.input), v.msg)
	}
}

func TestMatchConcepts(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := newMatcher()

	tests := []struct {
		msg   string
		text  string
		lang  match.Language
		ids   []string
		stage []match.Stage
	}{
		{
			msg:   "synonym on word boundary",
			text:  "I use retinol every night",
			lang:  match.EN,
			ids:   []string{"RETINOID"},
			stage: []match.Stage{match.StageExact},
		},
		{
			msg:   "regex beats substring",
			text:  "retinoids at night",
			lang:  match.EN,
			ids:   []string{"RETINOID"},
			stage: []match.Stage{match.StageRegex},
		},
		{
			msg:   "substring only",
			text:  "niacinamides",
			lang:  match.EN,
			ids:   []string{"NIACINAMIDE"},
			stage: []match.Stage{match.StageSubstring},
		},
		{
			msg:  "chinese synonym is ignored for EN",
			text: "我有敏感肌",
			lang: match.EN,
		},
		{
			msg:   "chinese synonym for CN",
			text:  "我有敏感肌",
			lang:  match.CN,
			ids:   []string{"SENSITIVE_SKIN"},
			stage: []match.Stage{match.StageExact},
		},
		{
			msg:   "concept id matches any language",
			text:  "BARRIER_COMPROMISED 怎么办",
			lang:  match.CN,
			ids:   []string{"BARRIER_COMPROMISED"},
			stage: []match.Stage{match.StageExact},
		},
		{
			msg:   "full-width input",
			text:  "ＲＥＴＩＮＯＬ serum",
			lang:  match.EN,
			ids:   []string{"RETINOID"},
			stage: []match.Stage{match.StageExact},
		},
		{
			msg:   "ordered by id within a stage",
			text:  "retinol and glycolic acid with niacinamide",
			lang:  match.EN,
			ids:   []string{"AHA", "NIACINAMIDE", "RETINOID"},
			stage: []match.Stage{match.StageExact, match.StageExact, match.StageExact},
		},
		{
			msg:  "empty text",
			text: "   ",
			lang: match.EN,
		},
	}

	for _, v := range tests {
		res := m.MatchConcepts(k, v.text, v.lang, 0)
		require.NotNil(t, res, v.msg)
		assert.Equal(t, len(v.ids), len(res), v.msg)
		if len(v.ids) == 0 {
			continue
		}
		assert.Equal(t, v.ids, match.ConceptIDs(res), v.msg)
		for i := range res {
			assert.Equal(t, v.stage[i], res[i].Stage, v.msg)
		}
	}
}

func TestMatchPrecedence(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := newMatcher()

	res := m.MatchConceptsDetailed(k, "I use retinol every night", match.EN, 0, true)
	require.Len(t, res.Matches, 1)
	cm := res.Matches[0]
	assert.Equal(t, "RETINOID", cm.ConceptID)
	assert.Equal(t, match.StageExact, cm.Stage)
	assert.Equal(t, "synonyms_en", cm.Source)
	assert.Equal(t, "retinol", cm.MatchedText)
	assert.Equal(t, match.EN, cm.Language)

	require.Len(t, res.Debug, 3)
	assert.Equal(t, match.StageExact, res.Debug[0].Stage)
	assert.Equal(t, match.StageRegex, res.Debug[1].Stage)
	assert.Equal(t, "retin(ol|al|oid)s?", res.Debug[1].MatchedText)
	assert.Equal(t, match.StageSubstring, res.Debug[2].Stage)
	assert.Equal(t, "retinol", res.Debug[2].MatchedText)
}

func TestMatchWithoutSubstring(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := newMatcher()

	res := m.MatchConceptsDetailed(k, "niacinamides", match.EN, 0, false)
	assert.Empty(t, res.Matches)
	assert.Empty(t, res.Debug)

	res = m.MatchConceptsDetailed(k, "retinoids", match.EN, 0, false)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, match.StageRegex, res.Matches[0].Stage)
}

func TestMatchCap(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := match.New(config.MatcherConfig{MaxConcepts: 2})
	text := "retinol and glycolic acid with niacinamide"

	res := m.MatchConcepts(k, text, match.EN, 0)
	assert.Equal(t, []string{"AHA", "NIACINAMIDE"}, match.ConceptIDs(res))

	res = m.MatchConcepts(k, text, match.EN, 1)
	assert.Equal(t, []string{"AHA"}, match.ConceptIDs(res))

	res = m.MatchConcepts(k, text, match.EN, 10)
	assert.Len(t, res, 3)
}

func TestMatchNoKB(t *testing.T) {
	m := newMatcher()
	assert.Empty(t, m.MatchConcepts(nil, "retinol", match.EN, 0))
	assert.Empty(t, m.MatchIngredients(nil, "retinol", match.EN, 0))
	assert.Equal(t, match.IndexStats{}, m.Stats(nil))
}

func TestIndexRebuild(t *testing.T) {
	m := newMatcher()
	first := iotesting.LoadKB(t)
	second := &kb.KB{
		Concepts: []kb.Concept{{ID: "ZINC", SynonymsEN: []string{"zinc"}}},
	}

	assert.Empty(t, m.MatchConcepts(first, "zinc oxide", match.EN, 0))
	res := m.MatchConcepts(second, "zinc oxide", match.EN, 0)
	assert.Equal(t, []string{"ZINC"}, match.ConceptIDs(res))
	res = m.MatchConcepts(first, "retinol", match.EN, 0)
	assert.Equal(t, []string{"RETINOID"}, match.ConceptIDs(res))
}

func TestStats(t *testing.T) {
	m := newMatcher()
	k := &kb.KB{
		Concepts: []kb.Concept{{
			ID:         "X_TERM",
			SynonymsEN: []string{"ab", "abc"},
			RegexHints: kb.RegexHints{EN: []string{"(?<=a)b", "ok+"}},
		}},
	}
	st := m.Stats(k)
	assert.Equal(t, 1, st.Concepts)
	assert.Equal(t, 3, st.ExactTerms)
	assert.Equal(t, 2, st.SubstringTerms, "terms shorter than 3 are not substrings")
	assert.Equal(t, 1, st.RegexTerms)
	assert.Equal(t, 1, st.InvalidRegex)
}

func TestMatchIngredients(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := newMatcher()

	res := m.MatchIngredients(k, "my serum has glycolic acid and niacinamide", match.EN, 0)
	require.Len(t, res, 2)
	assert.Equal(t, "glycolic_acid", res[0].IngredientID)
	assert.Equal(t, "Glycolic Acid", res[0].MatchedText)
	assert.Equal(t, "inci", res[0].Source)
	assert.Equal(t, []string{"AHA"}, res[0].Classes)
	assert.Equal(t, []string{"irritant", "isotretinoin_avoid"}, res[0].ContraindicationTags)
	assert.Equal(t, "high", res[0].EvidenceLevel)
	assert.Equal(t, "niacinamide", res[1].IngredientID)
	assert.Equal(t, "ingredient_id", res[1].Source)

	res = m.MatchIngredients(k, "my serum has glycolic acid and niacinamide", match.EN, 1)
	require.Len(t, res, 1)
	assert.Equal(t, "glycolic_acid", res[0].IngredientID)

	res = m.MatchIngredients(k, "vitamin a retinol", match.EN, 0)
	require.Len(t, res, 1)
	assert.Equal(t, "vitamin a", res[0].MatchedText, "longest term wins")

	res = m.MatchIngredients(k, "视黄醇精华", match.CN, 0)
	require.Len(t, res, 1)
	assert.Equal(t, "retinol", res[0].IngredientID)
	assert.Empty(t, m.MatchIngredients(k, "视黄醇精华", match.EN, 0))

	res = m.MatchIngredients(k, "tea tree oil spot gel", match.EN, 0)
	require.Len(t, res, 1)
	assert.Equal(t, "unknown", res[0].EvidenceLevel)
}

func TestActiveTokens(t *testing.T) {
	res := match.ActiveTokens([]string{"retinoid", "BPO", "aha", "GLYCOLIC_ACID", "HYDROQUINONE"})
	assert.Equal(t, []string{"retinoid", "benzoyl_peroxide", "aha"}, res)
	assert.Empty(t, match.ActiveTokens(nil))
}

func TestConcurrentMatching(t *testing.T) {
	k := iotesting.LoadKB(t)
	m := newMatcher()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := m.MatchConcepts(k, "retinol with bpo", match.EN, 0)
			assert.Equal(t, []string{"BENZOYL_PEROXIDE", "RETINOID"}, match.ConceptIDs(res))
		}()
	}
	wg.Wait()
}
