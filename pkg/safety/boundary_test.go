package safety_test

import (
	"strings"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBoundary(t *testing.T) {
	tests := []struct {
		msg     string
		message string
		profile safety.Profile
		flags   []safety.Flag
		lang    match.Language
		block   bool
		ids     []string
	}{
		{
			msg:     "plain skincare question",
			message: "which moisturizer for dry skin?",
			lang:    match.EN,
			ids:     []string{},
		},
		{
			msg:     "infection signal",
			message: "there is pus and I have a fever",
			lang:    match.EN,
			block:   true,
			ids:     []string{"infection_signal"},
		},
		{
			msg:     "two signals",
			message: "Severe pain and bleeding after a peel",
			lang:    match.EN,
			block:   true,
			ids:     []string{"severe_pain", "bleeding_ulcer"},
		},
		{
			msg:     "chinese signal",
			message: "刷酸后眼皮肿了",
			lang:    match.CN,
			block:   true,
			ids:     []string{"眼周严重"},
		},
		{
			msg:     "fragile profile",
			message: "new serum?",
			profile: safety.Profile{BarrierStatus: "Compromised", Sensitivity: "high"},
			lang:    match.EN,
			ids:     []string{"fragile_profile_guard"},
		},
		{
			msg:     "fragile profile needs a message",
			message: "  ",
			profile: safety.Profile{BarrierStatus: "damaged", Sensitivity: "HIGH"},
			lang:    match.EN,
			ids:     []string{},
		},
		{
			msg:     "artifact flags",
			message: "what now?",
			flags: []safety.Flag{
				{ID: "", Severity: "BLOCK"},
				{ID: "rash", Severity: "mild"},
				{ID: "rash", Severity: "mild"},
			},
			lang:  match.EN,
			block: true,
			ids:   []string{"artifact_flag", "rash"},
		},
	}

	for _, v := range tests {
		res := safety.CheckBoundary(v.message, v.profile, v.flags, v.lang)
		assert.Equal(t, v.block, res.Block, v.msg)
		ids := []string{}
		for _, f := range res.Flags {
			ids = append(ids, f.ID)
		}
		assert.Equal(t, v.ids, ids, v.msg)
		assert.Equal(t, safety.DisclaimerVersion, res.DisclaimerVersion, v.msg)
		if v.block {
			assert.Len(t, res.Notice, 3, v.msg)
		} else {
			assert.Len(t, res.Notice, 1, v.msg)
		}
	}
}

func TestCheckBoundaryText(t *testing.T) {
	res := safety.CheckBoundary("there is pus", safety.Profile{}, nil, match.CN)
	require.True(t, res.Block)
	assert.True(t, strings.HasPrefix(res.Message, "你描述的症状存在医疗风险信号"))
	assert.Equal(t, "message", res.Flags[0].Source)
	assert.Equal(t, "there is pus", res.Flags[0].Snippet)

	res = safety.CheckBoundary("hello", safety.Profile{}, nil, match.EN)
	assert.False(t, res.Block)
	assert.Equal(t,
		[]string{"This service provides skincare guidance only, not medical diagnosis."},
		res.Notice)

	long := "bleeding " + strings.Repeat("x", 200)
	res = safety.CheckBoundary(long, safety.Profile{}, nil, match.EN)
	require.Len(t, res.Flags, 1)
	assert.Len(t, []rune(res.Flags[0].Snippet), 120)

	var flags []safety.Flag
	for i := range 12 {
		flags = append(flags, safety.Flag{ID: "f" + string(rune('a'+i))})
	}
	res = safety.CheckBoundary("hi", safety.Profile{}, flags, match.EN)
	assert.Len(t, res.Flags, 8)
	assert.False(t, res.Block)
}
