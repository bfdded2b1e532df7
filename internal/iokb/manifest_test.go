package iokb_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aurora-skin/skinsafety/internal/iokb"
	"github.com/aurora-skin/skinsafety/internal/iotesting"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildManifest(t *testing.T) {
	dir := t.TempDir()
	iotesting.WriteKBFiles(t, dir, iotesting.FixtureTables())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m, err := iokb.BuildManifest(dir, "v0.1.0", now)
	require.Nil(t, err)
	assert.Equal(t, "v0.1.0", m.KBVersion)
	assert.Equal(t, "2026-03-01T10:00:00Z", m.GeneratedUTC)
	require.Len(t, m.Files, 5)
	for i, f := range m.Files {
		assert.Equal(t, kb.RequiredFiles[i], f.Filename)
		require.NotNil(t, f.Bytes)
		assert.Len(t, f.SHA256, 64)
	}

	res := iokb.ValidateManifest(m, dir)
	assert.True(t, res.OK)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "v0.1.0", res.KBVersion)
}

func TestBuildManifestMissingFile(t *testing.T) {
	_, err := iokb.BuildManifest(t.TempDir(), "v0.1.0", time.Now())
	assert.NotNil(t, err)
}

func TestValidateManifest(t *testing.T) {
	dir := t.TempDir()
	iotesting.WriteKBFiles(t, dir, map[string]string{"a.json": "hello"})
	const helloSHA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	size := func(n int64) *int64 { return &n }

	tests := []struct {
		msg  string
		file kb.ManifestEntry
		ok   bool
		err  string
	}{
		{
			msg:  "match",
			file: kb.ManifestEntry{Filename: "a.json", Bytes: size(5), SHA256: helloSHA},
			ok:   true,
		},
		{
			msg:  "nothing declared",
			file: kb.ManifestEntry{Filename: "a.json"},
			ok:   true,
		},
		{
			msg:  "missing",
			file: kb.ManifestEntry{Filename: "b.json", Bytes: size(5)},
			err:  "missing file in manifest: b.json",
		},
		{
			msg:  "bytes",
			file: kb.ManifestEntry{Filename: "a.json", Bytes: size(7)},
			err:  "byte mismatch for a.json: expected 7, got 5",
		},
		{
			msg:  "sha",
			file: kb.ManifestEntry{Filename: "a.json", SHA256: "00"},
			err:  "sha mismatch for a.json: expected 00, got " + helloSHA,
		},
	}

	for _, v := range tests {
		m := kb.Manifest{KBVersion: "v1", Files: []kb.ManifestEntry{v.file}}
		res := iokb.ValidateManifest(m, dir)
		assert.Equal(t, v.ok, res.OK, v.msg)
		assert.Equal(t, "v1", res.KBVersion, v.msg)
		if v.ok {
			assert.Empty(t, res.Errors, v.msg)
			continue
		}
		assert.Equal(t, []string{v.err}, res.Errors, v.msg)
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	iotesting.WriteKBFiles(t, dir, iotesting.FixtureTables())

	m, err := iokb.WriteManifest(dir, "v0.2.0")
	require.Nil(t, err)
	assert.Equal(t, "v0.2.0", m.KBVersion)

	bs, err := os.ReadFile(filepath.Join(dir, kb.ManifestFile))
	require.Nil(t, err)
	assert.Contains(t, string(bs), `"kb_version": "v0.2.0"`)
	assert.Contains(t, string(bs), kb.ClimateNormalsFile)
}

func TestWriteManifestTablesVersion(t *testing.T) {
	dir := t.TempDir()
	iotesting.WriteKBFiles(t, dir, iotesting.FixtureTables())

	v, err := iokb.TablesVersion(dir)
	require.Nil(t, err)
	assert.Equal(t, iotesting.FixtureVersion, v)

	m, err := iokb.WriteManifest(dir, "")
	require.Nil(t, err)
	assert.Equal(t, iotesting.FixtureVersion, m.KBVersion)

	_, err = iokb.TablesVersion(t.TempDir())
	assert.NotNil(t, err)
}
