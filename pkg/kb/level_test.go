package kb_test

import (
	"encoding/json"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		msg, input string
		res        kb.Level
		ok         bool
	}{
		{"info", "INFO", kb.Info, true},
		{"lower warn", "warn", kb.Warn, true},
		{"require info", "REQUIRE_INFO", kb.RequireInfo, true},
		{"dashed", "require-info", kb.RequireInfo, true},
		{"block with spaces", " block ", kb.Block, true},
		{"unknown", "CRITICAL", kb.Info, false},
		{"empty", "", kb.Info, false},
	}

	for _, v := range tests {
		res, ok := kb.ParseLevel(v.input)
		assert.Equal(t, v.res, res, v.msg)
		assert.Equal(t, v.ok, ok, v.msg)
	}
}

func TestLevelLattice(t *testing.T) {
	levels := []kb.Level{kb.Info, kb.Warn, kb.RequireInfo, kb.Block}
	for i, a := range levels {
		assert.Equal(t, i, a.Weight())
		for _, b := range levels {
			m := kb.Max(a, b)
			assert.GreaterOrEqual(t, m.Weight(), a.Weight())
			assert.GreaterOrEqual(t, m.Weight(), b.Weight())
			assert.Equal(t, m, kb.Max(b, a))
		}
	}
	assert.Equal(t, kb.Info, kb.MaxOf())
	assert.Equal(t, kb.Block, kb.MaxOf(kb.Warn, kb.Block, kb.RequireInfo))
}

func TestLevelMonotonicUnion(t *testing.T) {
	sets := [][]kb.Level{
		{},
		{kb.Warn},
		{kb.Info, kb.RequireInfo},
		{kb.Block, kb.Info},
	}
	for _, a := range sets {
		for _, b := range sets {
			union := append(append([]kb.Level{}, a...), b...)
			assert.GreaterOrEqual(t, kb.MaxOf(union...).Weight(), kb.MaxOf(a...).Weight())
			assert.GreaterOrEqual(t, kb.MaxOf(union...).Weight(), kb.MaxOf(b...).Weight())
		}
	}
}

func TestLevelJSON(t *testing.T) {
	bs, err := json.Marshal(struct {
		L kb.Level `json:"l"`
	}{kb.RequireInfo})
	require.NoError(t, err)
	assert.Equal(t, `{"l":"REQUIRE_INFO"}`, string(bs))

	var res struct {
		L kb.Level `json:"l"`
	}
	err = json.Unmarshal([]byte(`{"l":"block"}`), &res)
	require.NoError(t, err)
	assert.Equal(t, kb.Block, res.L)

	err = json.Unmarshal([]byte(`{"l":"nope"}`), &res)
	assert.Error(t, err)
}
