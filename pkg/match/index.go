package match

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/aurora-skin/skinsafety/pkg/kb"
)

type termEntry struct {
	id      string
	term    string
	lower   string
	compact string
	source  string
	lang    Language
	// boundary is true for ASCII terms that must match on word
	// boundaries.
	boundary bool
}

type regexEntry struct {
	id      string
	pattern string
	re      *regexp.Regexp
	source  string
	lang    Language
}

type ingredientEntry struct {
	termEntry
	classes  []string
	tags     []string
	evidence string
}

// index is the compiled form of one KB. It is never modified after
// build.
type index struct {
	kb          *kb.KB
	exact       []termEntry
	regex       []regexEntry
	substring   []termEntry
	ingredients []ingredientEntry
	stats       IndexStats
}

type termRow struct {
	term   string
	lang   Language
	source string
}

func newTermEntry(id string, row termRow) (termEntry, bool) {
	term := strings.TrimSpace(row.term)
	if term == "" {
		return termEntry{}, false
	}
	lower := strings.ToLower(nfkc(term))
	return termEntry{
		id:       id,
		term:     term,
		lower:    lower,
		compact:  compact(lower),
		source:   row.source,
		lang:     row.lang,
		boundary: isASCIIToken(term) && len(term) <= maxBoundaryTermLen,
	}, true
}

func buildIndex(k *kb.KB) *index {
	res := &index{kb: k}
	exactSeen := make(map[string]struct{})
	regexSeen := make(map[string]struct{})
	substringSeen := make(map[string]struct{})
	ingredientSeen := make(map[string]struct{})

	addOnce := func(seen map[string]struct{}, key string) bool {
		key = strings.ToLower(key)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	}

	for i := range k.Concepts {
		c := &k.Concepts[i]
		var rows []termRow
		for _, v := range c.SynonymsEN {
			rows = append(rows, termRow{v, EN, "synonyms_en"})
		}
		for _, v := range c.SynonymsZH {
			rows = append(rows, termRow{v, CN, "synonyms_zh"})
		}
		for _, v := range c.INCIAliases {
			rows = append(rows, termRow{v, Any, "inci_aliases"})
		}
		rows = append(rows, termRow{c.ID, Any, "concept_id"})

		for _, row := range rows {
			e, ok := newTermEntry(c.ID, row)
			if !ok {
				continue
			}
			if addOnce(exactSeen, c.ID+"|"+e.source+"|"+e.lower) {
				res.exact = append(res.exact, e)
			}
			if len([]rune(e.compact)) >= 3 &&
				addOnce(substringSeen, c.ID+"|"+e.source+"|"+e.compact) {
				res.substring = append(res.substring, e)
			}
		}

		var hints []termRow
		for _, v := range c.RegexHints.EN {
			hints = append(hints, termRow{v, EN, "regex_hints.en"})
		}
		for _, v := range c.RegexHints.ZH {
			hints = append(hints, termRow{v, CN, "regex_hints.zh"})
		}
		for _, h := range hints {
			pattern := strings.TrimSpace(h.term)
			if pattern == "" {
				continue
			}
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				res.stats.InvalidRegex++
				slog.Warn("Skipping regex hint",
					"concept_id", c.ID, "pattern", pattern, "error", err)
				continue
			}
			if addOnce(regexSeen, c.ID+"|"+string(h.lang)+"|"+pattern) {
				res.regex = append(res.regex, regexEntry{
					id:      c.ID,
					pattern: pattern,
					re:      re,
					source:  h.source,
					lang:    h.lang,
				})
			}
		}
	}

	for i := range k.Ingredients {
		ing := &k.Ingredients[i]
		rows := []termRow{{ing.ID, Any, "ingredient_id"}}
		if ing.INCI != "" {
			rows = append(rows, termRow{ing.INCI, Any, "inci"})
		}
		for _, v := range ing.CommonNames.EN {
			rows = append(rows, termRow{v, EN, "common_names.en"})
		}
		for _, v := range ing.CommonNames.ZH {
			rows = append(rows, termRow{v, CN, "common_names.zh"})
		}
		evidence := ing.EvidenceLevel
		if evidence == "" {
			evidence = "unknown"
		}
		for _, row := range rows {
			e, ok := newTermEntry(ing.ID, row)
			if !ok {
				continue
			}
			if !addOnce(ingredientSeen, ing.ID+"|"+e.source+"|"+e.lower) {
				continue
			}
			res.ingredients = append(res.ingredients, ingredientEntry{
				termEntry: e,
				classes:   ing.Classes,
				tags:      ing.ContraindicationTags,
				evidence:  evidence,
			})
		}
	}

	res.stats.Concepts = len(k.Concepts)
	res.stats.ExactTerms = len(res.exact)
	res.stats.RegexTerms = len(res.regex)
	res.stats.SubstringTerms = len(res.substring)
	res.stats.IngredientTerms = len(res.ingredients)
	slog.Debug("Matcher index built",
		"kb_version", k.KBVersion,
		"exact", res.stats.ExactTerms,
		"regex", res.stats.RegexTerms,
		"substring", res.stats.SubstringTerms,
		"ingredients", res.stats.IngredientTerms,
	)
	return res
}

// exactHit applies the exact tier to a term: the whole text equals the
// term, or the term occurs on word boundaries (ASCII terms), or the
// compacted text contains it (other terms).
func (e *termEntry) exactHit(q query) bool {
	if q.lower == e.lower || q.compact == e.compact {
		return true
	}
	if e.boundary {
		return containsWord(q.lower, e.lower)
	}
	return strings.Contains(q.compact, e.compact)
}
