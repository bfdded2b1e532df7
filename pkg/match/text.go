package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxBoundaryTermLen = 120

// ParseLanguage maps CN and ZH-prefixed codes to CN, anything else to EN.
func ParseLanguage(s string) Language {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "CN" || strings.HasPrefix(s, "ZH") {
		return CN
	}
	return EN
}

func (l Language) allows(active Language) bool {
	switch l {
	case EN, CN:
		return l == active
	default:
		return true
	}
}

// query is a text prepared for matching.
type query struct {
	raw     string
	lower   string
	compact string
}

func newQuery(text string) query {
	raw := strings.TrimSpace(nfkc(text))
	lower := strings.ToLower(raw)
	return query{raw: raw, lower: lower, compact: compact(lower)}
}

func nfkc(s string) string {
	return norm.NFKC.String(s)
}

// compact drops all white space.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// isASCIIToken reports if s consists of letters, digits, space and
// _+-./ only.
func isASCIIToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == ' ', c == '_', c == '+', c == '-', c == '.', c == '/':
		default:
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// containsWord reports if term occurs in text with no lower-case letter
// or digit right before or after it.
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	for from := 0; from <= len(text)-len(term); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		before := start == 0 || !isWordByte(text[start-1])
		after := end == len(text) || !isWordByte(text[end])
		if before && after {
			return true
		}
		from = start + 1
	}
	return false
}
