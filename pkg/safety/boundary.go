package safety

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aurora-skin/skinsafety/pkg/match"
)

// Boundary severities.
const (
	SeverityBlock = "block"
	SeverityWarn  = "warn"
)

// DisclaimerVersion is the version of the medical boundary wording.
const DisclaimerVersion = "v1"

const (
	maxFlags   = 8
	maxSnippet = 120
)

// Flag is a red-flag signal found in a message, a profile or an
// upstream artifact.
type Flag struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Snippet  string `json:"snippet,omitempty"`
}

// Boundary tells if a conversation has left skincare territory and
// needs medical care instead of product advice.
type Boundary struct {
	Block             bool     `json:"block"`
	Flags             []Flag   `json:"flags"`
	Message           string   `json:"assistant_message"`
	Notice            []string `json:"notice_bullets"`
	DisclaimerVersion string   `json:"disclaimer_version"`
}

var redFlags = []struct {
	id string
	re *regexp.Regexp
}{
	{"severe_pain", regexp.MustCompile(`(?i)\b(severe pain|intense pain|painful swelling)\b`)},
	{"infection_signal", regexp.MustCompile(`(?i)\b(pus|oozing|infection|fever|cellulitis)\b`)},
	{"rapid_worsening", regexp.MustCompile(`(?i)\b(sudden spread|rapidly spreading|worsening fast)\b`)},
	{"bleeding_ulcer", regexp.MustCompile(`(?i)\b(bleeding|open wound|ulcer)\b`)},
	{"eye_swelling", regexp.MustCompile(`(?i)\b(eye swelling|eyelid swelling|around my eye swollen)\b`)},
	{"剧痛", regexp.MustCompile(`剧痛|疼得厉害|刺痛很强`)},
	{"感染迹象", regexp.MustCompile(`化脓|渗液|发烧|疑似感染`)},
	{"快速恶化", regexp.MustCompile(`突然扩散|迅速加重|大面积恶化`)},
	{"出血破溃", regexp.MustCompile(`出血|破溃|溃烂`)},
	{"眼周严重", regexp.MustCompile(`眼周肿|眼皮肿|眼部肿胀`)},
}

var (
	boundaryBlock = text{
		EN: "Your symptoms include medical risk signals. I cannot provide medical diagnosis or continue product recommendations. Please pause potentially irritating products and seek dermatology/medical care promptly.",
		CN: "你描述的症状存在医疗风险信号。我不能提供医疗诊断或继续商品推荐。建议先停用刺激性产品，并尽快咨询皮肤科或医疗机构。",
	}
	boundaryOK = text{
		EN: "I will stay within non-medical guidance and prioritize conservative options.",
		CN: "我会保持非医疗建议范围，并优先给温和保守方案。",
	}
	noticeBlock = []text{
		{"Pause strong actives (acids/retinoids/high-potency actives).", "停止新增强刺激活性（酸/维A/高浓功效）。"},
		{"If symptoms persist or worsen, seek professional care promptly.", "若症状持续或加重，请及时就医。"},
		{"Resume skincare-only guidance after stabilization.", "恢复后可再做护肤层面的温和评估。"},
	}
	noticeOK = []text{
		{"This service provides skincare guidance only, not medical diagnosis.", "本服务仅提供护肤建议，不提供医疗诊断。"},
	}
)

// CheckBoundary looks for medical red flags. Message patterns and
// artifact flags with block severity block the conversation. A profile
// with a compromised barrier and high sensitivity adds a warning.
func CheckBoundary(
	message string,
	profile Profile,
	artifactFlags []Flag,
	lang match.Language,
) Boundary {
	msg := strings.TrimSpace(message)
	var flags []Flag

	for _, v := range redFlags {
		if !v.re.MatchString(msg) {
			continue
		}
		flags = append(flags, Flag{
			ID:       v.id,
			Severity: SeverityBlock,
			Source:   "message",
			Snippet:  truncate(msg, maxSnippet),
		})
	}

	for _, v := range artifactFlags {
		f := Flag{
			ID:       strings.TrimSpace(v.ID),
			Severity: SeverityWarn,
			Source:   "artifact",
		}
		if f.ID == "" {
			f.ID = "artifact_flag"
		}
		if strings.EqualFold(strings.TrimSpace(v.Severity), SeverityBlock) {
			f.Severity = SeverityBlock
		}
		flags = append(flags, f)
	}

	barrier := normalizeToken(profile.BarrierStatus)
	fragile := (barrier == "impaired" || barrier == "compromised" || barrier == "damaged") &&
		normalizeToken(profile.Sensitivity) == "high"
	if fragile && msg != "" {
		flags = append(flags, Flag{
			ID:       "fragile_profile_guard",
			Severity: SeverityWarn,
			Source:   "profile",
		})
	}

	res := Boundary{Flags: []Flag{}, DisclaimerVersion: DisclaimerVersion}
	seen := make(map[string]struct{})
	for _, f := range flags {
		if f.Severity == SeverityBlock {
			res.Block = true
		}
		key := f.ID + "|" + f.Severity + "|" + f.Source
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if len(res.Flags) < maxFlags {
			res.Flags = append(res.Flags, f)
		}
	}

	msgText, notice := boundaryOK, noticeOK
	if res.Block {
		msgText, notice = boundaryBlock, noticeBlock
	}
	res.Message = msgText.pick(lang)
	for _, v := range notice {
		res.Notice = append(res.Notice, v.pick(lang))
	}
	return res
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
