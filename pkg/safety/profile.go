package safety

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pregnancy statuses.
const (
	Pregnant    = "pregnant"
	Trying      = "trying"
	NotPregnant = "not_pregnant"
	Unknown     = "unknown"
)

// Lactation statuses.
const (
	Breastfeeding = "breastfeeding"
	NotLactating  = "not_lactating"
)

// Age bands.
const (
	AgeChild = "child"
	AgeTeen  = "teen"
	AgeAdult = "adult"
)

// Canonical medication tokens.
const (
	MedIsotretinoin          = "isotretinoin"
	MedTopicalRetinoid       = "topical_retinoid"
	MedTopicalSteroid        = "topical_steroid"
	MedOralAntibiotic        = "oral_antibiotic"
	MedSpironolactone        = "spironolactone"
	MedHormonalContraceptive = "hormonal_contraceptive"
)

var (
	reUnknownStatus = regexp.MustCompile(`(unknown|不确定|未知|not sure|unsure)`)

	reNotPregnant = regexp.MustCompile(`(not[_\s-]?pregnan|未怀孕|没有怀孕|非孕)`)
	reTrying      = regexp.MustCompile(`(trying|conceiv|\bttc\b|备孕)`)
	rePregnant    = regexp.MustCompile(`(pregnan|怀孕|孕期|孕妇)`)

	reNotLactating = regexp.MustCompile(`(not[_\s-]?(lactat|breastfeed|nursing)|非哺乳|未哺乳|不哺乳)`)
	reLactating    = regexp.MustCompile(`(lactat|breastfeed|nursing|哺乳|母乳)`)

	reAgeNumber = regexp.MustCompile(`^\d{1,3}$`)
	reAgeRange  = regexp.MustCompile(`^(\d{1,2})_(\d{1,2})$`)
	reAgeOpen   = regexp.MustCompile(`^(\d{1,2})(_?plus|_?\+|_and_over|_up)$`)
	reNonToken  = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizePregnancy maps free text onto pregnant, trying,
// not_pregnant or unknown.
func NormalizePregnancy(s string) string {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch {
	case raw == "":
		return Unknown
	case reNotPregnant.MatchString(raw):
		return NotPregnant
	case reUnknownStatus.MatchString(raw):
		return Unknown
	case reTrying.MatchString(raw):
		return Trying
	case rePregnant.MatchString(raw):
		return Pregnant
	default:
		return Unknown
	}
}

// NormalizeLactation maps free text onto breastfeeding, not_lactating
// or unknown. "lactating" is a synonym of breastfeeding.
func NormalizeLactation(s string) string {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch {
	case raw == "":
		return Unknown
	case reNotLactating.MatchString(raw):
		return NotLactating
	case reUnknownStatus.MatchString(raw):
		return Unknown
	case reLactating.MatchString(raw):
		return Breastfeeding
	default:
		return Unknown
	}
}

// NormalizeAgeBand maps free text onto child, teen, adult or unknown.
// Age ranges such as under_13, 13_17 or 55_plus and plain ages are
// accepted. The second value is the cleaned raw token, kept so rules
// authored with ranges still compare.
func NormalizeAgeBand(s string) (string, string) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Unknown, ""
	}
	switch raw {
	case "儿童", "小孩":
		return AgeChild, raw
	case "青少年", "未成年":
		return AgeTeen, raw
	case "成人", "成年":
		return AgeAdult, raw
	}
	token := strings.Trim(reNonToken.ReplaceAllString(raw, "_"), "_")
	if strings.HasSuffix(raw, "+") {
		token += "_plus"
	}

	switch token {
	case AgeChild, "kid", "kids", "children":
		return AgeChild, token
	case AgeTeen, "teens", "teenager", "adolescent":
		return AgeTeen, token
	case AgeAdult, "adults":
		return AgeAdult, token
	case "under_13", "under13", "below_13":
		return AgeChild, token
	}

	if reAgeNumber.MatchString(token) {
		n, _ := strconv.Atoi(token)
		return ageBandOf(n), token
	}
	if m := reAgeRange.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		return ageBandOf(n), token
	}
	if m := reAgeOpen.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		return ageBandOf(n), token
	}
	return Unknown, token
}

func ageBandOf(age int) string {
	switch {
	case age < 13:
		return AgeChild
	case age < 18:
		return AgeTeen
	default:
		return AgeAdult
	}
}

var medicationTokens = []struct {
	token string
	re    *regexp.Regexp
}{
	// isotretinoin goes first, "tretinoin" and "维a酸" are part of its
	// names.
	{MedIsotretinoin, reIsotretinoin},
	{MedTopicalRetinoid, reTopicalRetinoid},
	{MedTopicalSteroid, regexp.MustCompile(
		`(steroid|hydrocortisone|clobetasol|betamethasone|mometasone|` +
			`triamcinolone|激素)`)},
	{MedOralAntibiotic, regexp.MustCompile(
		`(antibiotic|doxycycline|minocycline|tetracycline|多西环素|米诺环素|抗生素)`)},
	{MedSpironolactone, regexp.MustCompile(`(spironolactone|螺内酯)`)},
	{MedHormonalContraceptive, regexp.MustCompile(
		`(contracepti|birth[_\s-]?control|the pill|避孕)`)},
}

var reTopicalRetinoid = regexp.MustCompile(
	`(tretinoin|adapalene|tazarotene|trifarotene|retin-a|differin|` +
		`topical[_\s-]?retinoid|维a酸|维甲酸|阿达帕林|他扎罗汀)`)

// reIsotretinoin only holds names that cannot denote a topical
// retinoid.
var reIsotretinoin = regexp.MustCompile(
	`(isotretinoin|accutane|roaccutane|absorica|claravis|amnesteem|` +
		`myorisan|zenatane|异维a酸|泰尔丝)`)

// CanonicalMedication maps a medication name onto the canonical
// vocabulary. Unknown names become a lower-case token.
func CanonicalMedication(s string) string {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return ""
	}
	for _, v := range medicationTokens {
		if v.re.MatchString(raw) {
			return v.token
		}
	}
	return normalizeToken(raw)
}

// canonicalMedications canonicalizes, deduplicates and sorts names.
func canonicalMedications(names []string) []string {
	seen := make(map[string]struct{})
	res := []string{}
	for _, v := range names {
		token := CanonicalMedication(v)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		res = append(res, token)
	}
	sort.Strings(res)
	return res
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(reNonToken.ReplaceAllString(s, "_"), "_")
}

// Negations are checked first: "not damaged" must not read as damaged.
var (
	reBarrierHealthy = regexp.MustCompile(
		`(^|[^a-z])(not|no|non|un)[\s_-]*(impaired|damaged|compromised|broken)|` +
			`healthy|normal|intact|没有受损|未受损|无受损|健康|正常`)
	reBarrierCompromised = regexp.MustCompile(
		`(impaired|damaged|compromised|broken|不稳定|受损)`)
	reSensitivityLow = regexp.MustCompile(
		`(^|[^a-z])(not|no|non|un|in)[\s_-]*(sensitive|high)|` +
			`(^|[^a-z])(low|normal|medium|moderate|resilient)([^a-z]|$)|不敏感|非敏感|耐受|低`)
	reSensitivityHigh = regexp.MustCompile(`(high|sensitive|高|敏感)`)
)

// BarrierCompromised reports if a barrier status describes an impaired
// skin barrier.
func BarrierCompromised(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || reBarrierHealthy.MatchString(s) {
		return false
	}
	return reBarrierCompromised.MatchString(s)
}

// SensitivityHigh reports if a sensitivity value describes sensitive
// skin.
func SensitivityHigh(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || reSensitivityLow.MatchString(s) {
		return false
	}
	return reSensitivityHigh.MatchString(s)
}

// Message inference. "I'm" may come with a typographic apostrophe.
var (
	reMsgNotPregnant = regexp.MustCompile(
		`(?i)\b(i(['’]| a)?m|i am|currently)\s+not\s+pregnant\b|我(现在)?(没有|未)怀孕`)
	reMsgTrying = regexp.MustCompile(
		`(?i)\b(i(['’]| a)?m|i am|currently|we(['’]re| are))\s+(trying(\s+to\s+conceive)?|ttc)\b|我(现在)?(在)?备孕`)
	reMsgPregnant = regexp.MustCompile(
		`(?i)\b(i(['’]| a)?m|i am|currently)\s+pregnan|我(现在)?(在)?怀孕|我孕期`)
	reMsgPregnancyTopic = regexp.MustCompile(
		`(?i)\b(while|during)\s+pregnan|\bpregnan(t|cy)\b|孕期|怀孕期间|孕妇`)

	reMsgNotLactating = regexp.MustCompile(
		`(?i)\b(i(['’]| a)?m|i am|currently)\s+not\s+(lactating|breastfeeding|nursing)\b|我(现在)?不(在)?哺乳`)
	reMsgLactating = regexp.MustCompile(
		`(?i)\b(i(['’]| a)?m|i am|currently)\s+(lactating|breastfeeding|nursing)\b|我(现在)?(在)?哺乳|我(现在)?母乳`)
	reMsgLactationTopic = regexp.MustCompile(
		`(?i)\b(while|during)\s+(lactating|breastfeeding|lactation|nursing)\b|\b(lactating|breastfeeding)\b|哺乳期|母乳期`)
)

// InferPregnancy reads a pregnancy status from a message. A message
// that merely talks about pregnancy counts as pregnant.
func InferPregnancy(msg string) string {
	switch {
	case reMsgNotPregnant.MatchString(msg):
		return NotPregnant
	case reMsgTrying.MatchString(msg):
		return Trying
	case reMsgPregnant.MatchString(msg), reMsgPregnancyTopic.MatchString(msg):
		return Pregnant
	default:
		return Unknown
	}
}

// InferLactation reads a lactation status from a message.
func InferLactation(msg string) string {
	switch {
	case reMsgNotLactating.MatchString(msg):
		return NotLactating
	case reMsgLactating.MatchString(msg), reMsgLactationTopic.MatchString(msg):
		return Breastfeeding
	default:
		return Unknown
	}
}
