package match

import (
	"sort"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/aurora-skin/skinsafety/pkg/kb"
)

type matcher struct {
	maxConcepts    int
	maxIngredients int

	// idx holds the index of the last KB seen. A different KB pointer
	// replaces it as a whole.
	idx atomic.Pointer[index]
}

func (m *matcher) index(k *kb.KB) *index {
	if k == nil {
		return nil
	}
	if idx := m.idx.Load(); idx != nil && idx.kb == k {
		return idx
	}
	idx := buildIndex(k)
	m.idx.Store(idx)
	return idx
}

// Stats implements Matcher.
func (m *matcher) Stats(k *kb.KB) IndexStats {
	idx := m.index(k)
	if idx == nil {
		return IndexStats{}
	}
	return idx.stats
}

// MatchConcepts implements Matcher.
func (m *matcher) MatchConcepts(
	k *kb.KB,
	text string,
	lang Language,
	max int,
) []ConceptMatch {
	return m.MatchConceptsDetailed(k, text, lang, max, true).Matches
}

// MatchConceptsDetailed implements Matcher.
func (m *matcher) MatchConceptsDetailed(
	k *kb.KB,
	text string,
	lang Language,
	max int,
	substring bool,
) Detailed {
	res := Detailed{Matches: []ConceptMatch{}, Debug: []ConceptMatch{}}
	q := newQuery(text)
	if q.raw == "" {
		return res
	}
	idx := m.index(k)
	if idx == nil {
		return res
	}
	if lang != CN {
		lang = EN
	}
	if max <= 0 {
		max = m.maxConcepts
	}

	best := make(map[string]ConceptMatch)
	add := func(cm ConceptMatch) {
		res.Debug = append(res.Debug, cm)
		prev, ok := best[cm.ConceptID]
		if !ok || cm.Stage.Priority() > prev.Stage.Priority() {
			best[cm.ConceptID] = cm
		}
	}

	for i := range idx.exact {
		e := &idx.exact[i]
		if !e.lang.allows(lang) || !e.exactHit(q) {
			continue
		}
		add(ConceptMatch{
			ConceptID:   e.id,
			Stage:       StageExact,
			Source:      e.source,
			MatchedText: e.term,
			Language:    e.lang,
		})
	}

	for i := range idx.regex {
		e := &idx.regex[i]
		if !e.lang.allows(lang) || !e.re.MatchString(q.raw) {
			continue
		}
		add(ConceptMatch{
			ConceptID:   e.id,
			Stage:       StageRegex,
			Source:      e.source,
			MatchedText: e.pattern,
			Language:    e.lang,
		})
	}

	if substring {
		for i := range idx.substring {
			e := &idx.substring[i]
			if !e.lang.allows(lang) || !strings.Contains(q.compact, e.compact) {
				continue
			}
			add(ConceptMatch{
				ConceptID:   e.id,
				Stage:       StageSubstring,
				Source:      e.source,
				MatchedText: e.term,
				Language:    e.lang,
			})
		}
	}

	for _, v := range best {
		res.Matches = append(res.Matches, v)
	}
	sort.Slice(res.Matches, func(i, j int) bool {
		a, b := res.Matches[i], res.Matches[j]
		if a.Stage != b.Stage {
			return a.Stage.Priority() > b.Stage.Priority()
		}
		return a.ConceptID < b.ConceptID
	})
	if len(res.Matches) > max {
		res.Matches = res.Matches[:max]
	}

	sort.SliceStable(res.Debug, func(i, j int) bool {
		a, b := res.Debug[i], res.Debug[j]
		if a.Stage != b.Stage {
			return a.Stage.Priority() > b.Stage.Priority()
		}
		if a.ConceptID != b.ConceptID {
			return a.ConceptID < b.ConceptID
		}
		return a.MatchedText < b.MatchedText
	})
	return res
}

// MatchIngredients implements Matcher.
func (m *matcher) MatchIngredients(
	k *kb.KB,
	text string,
	lang Language,
	max int,
) []IngredientHit {
	res := []IngredientHit{}
	q := newQuery(text)
	if q.raw == "" {
		return res
	}
	idx := m.index(k)
	if idx == nil {
		return res
	}
	if lang != CN {
		lang = EN
	}
	if max <= 0 {
		max = m.maxIngredients
	}

	best := make(map[string]IngredientHit)
	for i := range idx.ingredients {
		e := &idx.ingredients[i]
		if !e.lang.allows(lang) || !e.exactHit(q) {
			continue
		}
		prev, ok := best[e.id]
		if ok && utf8.RuneCountInString(e.term) <= utf8.RuneCountInString(prev.MatchedText) {
			continue
		}
		best[e.id] = IngredientHit{
			IngredientID:         e.id,
			MatchedText:          e.term,
			Source:               e.source,
			Classes:              e.classes,
			ContraindicationTags: e.tags,
			EvidenceLevel:        e.evidence,
		}
	}

	for _, v := range best {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].IngredientID < res[j].IngredientID
	})
	if len(res) > max {
		res = res[:max]
	}
	return res
}
