package kb

import (
	"strings"
	"unicode/utf8"
)

const (
	notesSeparator = " | "
	maxNotesRunes  = 600
	maxSources     = 24

	syntheticNotes = "synthetic concept generated from rule reference"
)

// FormatConceptIDAsLabel turns RETINOID_ESTER into "Retinoid Ester".
func FormatConceptIDAsLabel(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "Unknown concept"
	}
	parts := strings.Split(strings.ToLower(id), "_")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		res = append(res, strings.ToUpper(string(r))+p[size:])
	}
	return strings.Join(res, " ")
}

// MergeConcepts unions rows sharing an identifier. The first row keeps
// its position; every later occurrence is reported once in the returned
// duplicate list.
func MergeConcepts(rows []Concept) ([]Concept, []string) {
	var res []Concept
	var dups []string
	idx := make(map[string]int, len(rows))

	for _, row := range rows {
		id := normalizeID(row.ID)
		if id == "" {
			continue
		}
		i, ok := idx[id]
		if !ok {
			row.ID = id
			row.SynonymsEN = UniqueStrings(row.SynonymsEN)
			row.SynonymsZH = UniqueStrings(row.SynonymsZH)
			row.INCIAliases = UniqueStrings(row.INCIAliases)
			row.RegexHints = RegexHints{
				EN: UniqueStrings(row.RegexHints.EN),
				ZH: UniqueStrings(row.RegexHints.ZH),
			}
			row.Sources = append([]Source(nil), row.Sources...)
			idx[id] = len(res)
			res = append(res, row)
			continue
		}

		dups = append(dups, id)
		prev := &res[i]
		prev.SynonymsEN = UniqueStrings(prev.SynonymsEN, row.SynonymsEN)
		prev.SynonymsZH = UniqueStrings(prev.SynonymsZH, row.SynonymsZH)
		prev.INCIAliases = UniqueStrings(prev.INCIAliases, row.INCIAliases)
		prev.RegexHints = RegexHints{
			EN: UniqueStrings(prev.RegexHints.EN, row.RegexHints.EN),
			ZH: UniqueStrings(prev.RegexHints.ZH, row.RegexHints.ZH),
		}
		prev.Labels = mergeLabels(id, prev.Labels, row.Labels)
		prev.Notes = joinNotes(prev.Notes, row.Notes)
		prev.Sources = append(prev.Sources, row.Sources...)
		if len(prev.Sources) > maxSources {
			prev.Sources = prev.Sources[:maxSources]
		}
	}
	return res, uniqueStrings(dups, upperCase)
}

func mergeLabels(id string, prev, row Labels) Labels {
	en := firstNonEmpty(prev.EN, row.EN, FormatConceptIDAsLabel(id))
	zh := firstNonEmpty(prev.ZH, row.ZH, prev.EN, row.EN, FormatConceptIDAsLabel(id))
	return Labels{EN: en, ZH: zh}
}

func joinNotes(notes ...string) string {
	var parts []string
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	res := strings.Join(parts, notesSeparator)
	if utf8.RuneCountInString(res) > maxNotesRunes {
		res = string([]rune(res)[:maxNotesRunes])
	}
	return res
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// ReferencedConceptIDs collects every concept identifier used by
// ingredient classes, rule trigger and decision sets, and interaction
// pairs, in first-seen order.
func ReferencedConceptIDs(t Tables) []string {
	var res []string
	seen := make(map[string]struct{})
	add := func(ids ...string) {
		for _, id := range ids {
			id = normalizeID(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			res = append(res, id)
		}
	}

	for _, ing := range t.Ingredients.Ingredients {
		add(ing.Classes...)
	}
	for _, r := range t.Rules.Rules {
		add(r.Trigger.ConceptsAny...)
		add(r.Trigger.ConceptsAny2...)
		add(r.Decision.BlockedConcepts...)
		add(r.Decision.SafeAlternativesConcepts...)
	}
	for _, ir := range t.Interactions.Interactions {
		add(ir.ConceptA, ir.ConceptB)
	}
	return res
}

// AddSyntheticConcepts appends a placeholder for every referenced
// identifier that is not declared. It returns the extended list and
// the identifiers that were synthesized.
func AddSyntheticConcepts(concepts []Concept, referenced []string) ([]Concept, []string) {
	known := make(map[string]struct{}, len(concepts))
	for _, c := range concepts {
		known[c.ID] = struct{}{}
	}
	var missing []string
	for _, id := range referenced {
		id = normalizeID(id)
		if id == "" {
			continue
		}
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		missing = append(missing, id)
		label := FormatConceptIDAsLabel(id)
		concepts = append(concepts, Concept{
			ID:          id,
			Labels:      Labels{EN: label, ZH: label},
			SynonymsEN:  []string{},
			SynonymsZH:  []string{},
			INCIAliases: []string{},
			RegexHints:  RegexHints{EN: []string{}, ZH: []string{}},
			Notes:       syntheticNotes,
			Synthetic:   true,
		})
	}
	return concepts, missing
}

// Assemble runs the two-pass concept build over parsed tables and
// returns a compiled KB. Loader metadata (source dir, fail mode, load
// time, manifest) is filled by the caller before the KB is published.
func Assemble(t Tables) *KB {
	merged, dups := MergeConcepts(t.Concepts.Concepts)
	concepts, missing := AddSyntheticConcepts(merged, ReferencedConceptIDs(t))

	byID := make(map[string]*Concept, len(concepts))
	for i := range concepts {
		byID[concepts[i].ID] = &concepts[i]
	}

	templates := make(map[string]Template, len(t.Rules.Templates))
	for _, tm := range t.Rules.Templates {
		id := strings.TrimSpace(tm.ID)
		if id == "" {
			continue
		}
		templates[id] = tm
	}

	if dups == nil {
		dups = []string{}
	}
	if missing == nil {
		missing = []string{}
	}

	return &KB{
		KBVersion:     ResolveVersion(t),
		Concepts:      concepts,
		ConceptsByID:  byID,
		Ingredients:   t.Ingredients.Ingredients,
		Rules:         t.Rules.Rules,
		TemplatesByID: templates,
		Interactions:  t.Interactions.Interactions,
		Regions:       t.Climate.Regions,
		Diagnostics: Diagnostics{
			DuplicateConceptIDs:    dups,
			SyntheticConceptIDs:    missing,
			SyntheticConceptsCount: len(missing),
			ManifestErrors:         []string{},
		},
	}
}

// ResolveVersion returns the first declared kb_version of the five
// tables in load order.
func ResolveVersion(t Tables) string {
	for _, v := range []string{
		t.Concepts.KBVersion,
		t.Ingredients.KBVersion,
		t.Rules.KBVersion,
		t.Interactions.KBVersion,
		t.Climate.KBVersion,
	} {
		if v != "" && v != UnknownVersion {
			return v
		}
	}
	return UnknownVersion
}
