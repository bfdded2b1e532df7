package safety

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
)

// Context anchors. A rule that requires two or more concepts and lists
// an anchor among them only fires when an anchor is present.
var anchorConcepts = map[string]struct{}{
	"BARRIER_COMPROMISED":  {},
	"BARRIER_IMPAIRED":     {},
	"SENSITIVE_SKIN":       {},
	"TRAVEL_HIGH_UV":       {},
	"HIGH_UV":              {},
	"PRODUCT_EVAL_REQUEST": {},
}

// IsAnchor reports if a concept id is a context anchor.
func IsAnchor(id string) bool {
	_, ok := anchorConcepts[strings.ToUpper(id)]
	return ok
}

// Context is the normalized view of a request that rules read.
type Context struct {
	Intent   string
	Message  string
	Lower    string
	Language match.Language

	Pregnancy string
	Lactation string
	AgeBand   string
	// AgeRaw is the cleaned age token of the profile, e.g. 18_24.
	AgeRaw string

	BarrierStatus      string
	Sensitivity        string
	BarrierCompromised bool
	SensitivityHigh    bool

	// Medications are canonical tokens, sorted.
	Medications  []string
	Isotretinoin bool

	Mentions Mentions

	// Concepts are upper-case ids in first-seen order.
	Concepts    []string
	conceptSet  map[string]struct{}
	Ingredients []match.IngredientHit

	Extra map[string]string
	KB    *kb.KB
}

// HasConcept reports if a concept id is present in the context.
func (c *Context) HasConcept(id string) bool {
	_, ok := c.conceptSet[strings.ToUpper(strings.TrimSpace(id))]
	return ok
}

// HasMedication reports if a canonical medication token is present.
func (c *Context) HasMedication(token string) bool {
	for _, v := range c.Medications {
		if v == token {
			return true
		}
	}
	return false
}

func (c *Context) addConcepts(ids ...string) {
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := c.conceptSet[id]; ok {
			continue
		}
		c.conceptSet[id] = struct{}{}
		c.Concepts = append(c.Concepts, id)
	}
}

func (c *Context) addIngredients(hits ...match.IngredientHit) {
	for _, h := range hits {
		if h.IngredientID == "" {
			continue
		}
		dup := false
		for _, v := range c.Ingredients {
			if v.IngredientID == h.IngredientID {
				dup = true
				break
			}
		}
		if !dup {
			c.Ingredients = append(c.Ingredients, h)
		}
	}
}

// NewContext normalizes a request. Profile fields that are unknown are
// inferred from the message. Concepts come from caller hints, matcher
// output (when m and k are given), ingredient classes, keyword
// mentions and profile anchors.
func NewContext(k *kb.KB, m match.Matcher, req Request) *Context {
	msg := strings.TrimSpace(norm.NFKC.String(req.Message))
	lower := strings.ToLower(msg)
	lang := req.Language
	if lang != match.CN {
		lang = match.EN
	}

	res := &Context{
		Intent:     strings.TrimSpace(req.Intent),
		Message:    msg,
		Lower:      lower,
		Language:   lang,
		Pregnancy:  NormalizePregnancy(req.Profile.PregnancyStatus),
		Lactation:  NormalizeLactation(req.Profile.LactationStatus),
		Extra:      req.Context,
		KB:         k,
		conceptSet: make(map[string]struct{}),
		Concepts:   []string{},
	}
	res.AgeBand, res.AgeRaw = NormalizeAgeBand(req.Profile.AgeBand)
	if res.Pregnancy == Unknown {
		res.Pregnancy = InferPregnancy(lower)
	}
	if res.Lactation == Unknown {
		res.Lactation = InferLactation(lower)
	}

	res.BarrierStatus = normalizeToken(req.Profile.BarrierStatus)
	res.Sensitivity = normalizeToken(req.Profile.Sensitivity)
	res.BarrierCompromised = BarrierCompromised(req.Profile.BarrierStatus)
	res.SensitivityHigh = SensitivityHigh(req.Profile.Sensitivity)

	res.Mentions = detectMentions(lower)

	meds := append([]string{}, req.Profile.HighRiskMedications...)
	if res.Mentions.OralIsotretinoin {
		meds = append(meds, MedIsotretinoin)
	}
	noIso := reIsotretinoin.ReplaceAllString(lower, " ")
	if reTopicalRetinoid.MatchString(noIso) {
		meds = append(meds, MedTopicalRetinoid)
	}
	for _, v := range req.MatchedConcepts {
		if strings.EqualFold(strings.TrimSpace(v), "ISOTRETINOIN") {
			meds = append(meds, MedIsotretinoin)
		}
	}
	res.Medications = canonicalMedications(meds)
	res.Isotretinoin = res.HasMedication(MedIsotretinoin)

	res.addConcepts(req.MatchedConcepts...)
	res.addIngredients(req.IngredientHits...)
	if k != nil && m != nil && msg != "" {
		res.addConcepts(match.ConceptIDs(m.MatchConcepts(k, msg, lang, 0))...)
		res.addIngredients(m.MatchIngredients(k, msg, lang, 0)...)
	}
	for _, h := range res.Ingredients {
		res.addConcepts(h.Classes...)
	}
	res.addConcepts(res.Mentions.conceptIDs()...)
	if res.BarrierCompromised {
		res.addConcepts("BARRIER_COMPROMISED")
	}
	if res.SensitivityHigh {
		res.addConcepts("SENSITIVE_SKIN")
	}
	if isProductEval(res.Intent) {
		res.addConcepts("PRODUCT_EVAL_REQUEST")
	}
	return res
}

func isProductEval(intent string) bool {
	intent = strings.ToLower(intent)
	return strings.Contains(intent, "product_eval") ||
		strings.Contains(intent, "evaluate_product") ||
		strings.Contains(intent, "product_analysis")
}

// contextMissing reports if a required_context_missing key is absent.
func (c *Context) contextMissing(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "pregnancy_status":
		return c.Pregnancy == Unknown
	case "lactation_status":
		return c.Lactation == Unknown
	case "age_band":
		return c.AgeBand == Unknown
	case "high_risk_medications", "medications":
		return len(c.Medications) == 0
	case "barrier_status":
		return c.BarrierStatus == "" || c.BarrierStatus == Unknown
	case "sensitivity":
		return c.Sensitivity == "" || c.Sensitivity == Unknown
	case "product_anchor":
		return strings.TrimSpace(c.Extra[key]) == "" &&
			!c.HasConcept("PRODUCT_EVAL_REQUEST")
	default:
		return strings.TrimSpace(c.Extra[key]) == ""
	}
}
