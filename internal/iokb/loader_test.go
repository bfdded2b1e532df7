package iokb_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aurora-skin/skinsafety/internal/iokb"
	"github.com/aurora-skin/skinsafety/internal/iotesting"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	loader []string
}

func (r *recorder) LoaderError(reason string)              { r.loader = append(r.loader, reason) }
func (r *recorder) RuleMatch(source, ruleID, level string) {}
func (r *recorder) LegacyFallback(reason string)           {}

func TestLoad(t *testing.T) {
	dir := iotesting.WriteKB(t)
	cfg := iotesting.SetupKBConfig(t, dir, config.FailClosed)
	l := iokb.New(cfg, nil)

	res, err := l.Load("")
	require.Nil(t, err)
	require.True(t, res.OK)
	require.NotNil(t, res.KB)

	k := res.KB
	assert.Equal(t, dir, res.SourceDir)
	assert.Equal(t, "closed", k.FailMode)
	assert.Equal(t, iotesting.FixtureVersion, k.KBVersion)
	assert.True(t, k.Manifest.OK)
	assert.Empty(t, k.Diagnostics.ManifestErrors)
	assert.Empty(t, k.Diagnostics.Warnings)
	assert.False(t, k.LoadedAt.IsZero())
	assert.Len(t, k.Ingredients, 5)
	assert.Len(t, k.Rules, 6)
	assert.Len(t, k.Interactions, 2)
	assert.Len(t, k.Regions, 1)

	tm, ok := k.Template("tmpl_preg_retinoid")
	assert.True(t, ok)
	assert.Contains(t, tm.TextEN, "pregnancy")
}

func TestLoadDuplicateConcepts(t *testing.T) {
	dir := iotesting.WriteKB(t)
	l := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), nil)

	res, err := l.Load(dir)
	require.Nil(t, err)
	require.True(t, res.OK)

	assert.Equal(t, []string{"RETINOID"}, res.Diagnostics.DuplicateConceptIDs)
	c, ok := res.KB.Concept("retinoid")
	require.True(t, ok)
	assert.Contains(t, c.SynonymsEN, "retinoid")
	assert.Contains(t, c.SynonymsEN, "retinol")
	assert.Equal(t, "Retinoid", c.Labels.EN)
	assert.Equal(t, "merged from the ingredient sheet", c.Notes)
	assert.False(t, c.Synthetic)

	var count int
	for _, v := range res.KB.Concepts {
		if v.ID == "RETINOID" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadNoDanglingConcepts(t *testing.T) {
	dir := iotesting.WriteKB(t)
	l := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), nil)

	res, err := l.Load(dir)
	require.Nil(t, err)
	k := res.KB

	assert.Equal(t, []string{"ESSENTIAL_OIL", "PEEL_AGGRESSIVE"},
		k.Diagnostics.SyntheticConceptIDs)
	assert.Equal(t, 2, k.Diagnostics.SyntheticConceptsCount)

	var refs []string
	for _, ing := range k.Ingredients {
		refs = append(refs, ing.Classes...)
	}
	for _, r := range k.Rules {
		refs = append(refs, r.Trigger.ConceptsAny...)
		refs = append(refs, r.Trigger.ConceptsAny2...)
		refs = append(refs, r.Decision.BlockedConcepts...)
		refs = append(refs, r.Decision.SafeAlternativesConcepts...)
	}
	for _, ir := range k.Interactions {
		refs = append(refs, ir.ConceptA, ir.ConceptB)
	}
	for _, id := range refs {
		_, ok := k.ConceptsByID[id]
		assert.True(t, ok, id)
	}

	c, ok := k.Concept("PEEL_AGGRESSIVE")
	require.True(t, ok)
	assert.True(t, c.Synthetic)
	assert.Equal(t, "Peel Aggressive", c.Labels.EN)
}

func TestLoadCache(t *testing.T) {
	dir := iotesting.WriteKB(t)
	l := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), nil)

	first, err := l.Load(dir)
	require.Nil(t, err)
	second, err := l.Load(dir)
	require.Nil(t, err)
	assert.Same(t, first, second, "unchanged files give the cached result")
	assert.Same(t, first.KB, second.KB)

	rel, err := filepath.Rel(mustGetwd(t), dir)
	require.Nil(t, err)
	third, err := l.Load(rel)
	require.Nil(t, err)
	assert.Same(t, first, third, "relative path resolves to the same slot")

	future := time.Now().Add(time.Hour)
	path := filepath.Join(dir, kb.IngredientOntologyFile)
	require.Nil(t, os.Chtimes(path, future, future))

	fourth, err := l.Load(dir)
	require.Nil(t, err)
	assert.NotSame(t, first, fourth, "touching a file forces a rebuild")
	assert.NotSame(t, first.KB, fourth.KB)
	assert.True(t, fourth.OK)

	fifth, err := l.Load(dir)
	require.Nil(t, err)
	assert.Same(t, fourth, fifth)

	sixth, err := l.Reload(dir)
	require.Nil(t, err)
	assert.NotSame(t, fifth, sixth, "reload ignores the cache")
}

func TestLoadMissingFile(t *testing.T) {
	tests := []struct {
		msg      string
		failMode string
	}{
		{"closed", config.FailClosed},
		{"open", config.FailOpen},
	}

	for _, v := range tests {
		dir := iotesting.WriteKB(t)
		require.Nil(t, os.Remove(filepath.Join(dir, kb.ClimateNormalsFile)))
		rec := &recorder{}
		l := iokb.New(iotesting.SetupKBConfig(t, dir, v.failMode), rec)

		res, err := l.Load(dir)
		assert.Equal(t, []string{"missing_required_file"}, rec.loader, v.msg)

		if v.failMode == config.FailClosed {
			require.NotNil(t, err, v.msg)
			assert.Nil(t, res, v.msg)
			var lerr *iokb.LoadError
			require.True(t, errors.As(err, &lerr), v.msg)
			assert.Equal(t, "missing_file:climate_normals.v0.json", lerr.Reason, v.msg)

			var gnErr *gn.Error
			require.True(t, errors.As(err, &gnErr), v.msg)
			assert.Equal(t, errcode.KBMissingFileError, gnErr.Code, v.msg)
			continue
		}

		require.Nil(t, err, v.msg)
		assert.False(t, res.OK, v.msg)
		assert.Nil(t, res.KB, v.msg)
		assert.Equal(t, "missing_file:climate_normals.v0.json", res.Reason, v.msg)
		require.Len(t, res.Diagnostics.ManifestErrors, 1, v.msg)
		assert.Contains(t, res.Diagnostics.ManifestErrors[0], kb.ClimateNormalsFile, v.msg)
	}
}

func TestLoadManifestMismatch(t *testing.T) {
	tests := []struct {
		msg      string
		failMode string
	}{
		{"closed", config.FailClosed},
		{"open", config.FailOpen},
	}

	for _, v := range tests {
		dir := iotesting.WriteKB(t)
		path := filepath.Join(dir, kb.ConceptDictionaryFile)
		bs, err := os.ReadFile(path)
		require.Nil(t, err)
		require.Nil(t, os.WriteFile(path, append(bs, '\n'), 0644))

		rec := &recorder{}
		l := iokb.New(iotesting.SetupKBConfig(t, dir, v.failMode), rec)
		res, err := l.Load(dir)
		assert.Equal(t, []string{"manifest_validation_failed"}, rec.loader, v.msg)

		if v.failMode == config.FailClosed {
			var lerr *iokb.LoadError
			require.True(t, errors.As(err, &lerr), v.msg)
			assert.Equal(t, "manifest_validation_failed", lerr.Reason, v.msg)
			assert.Len(t, lerr.Diagnostics.ManifestErrors, 2, v.msg)
			continue
		}

		require.Nil(t, err, v.msg)
		require.True(t, res.OK, v.msg)
		assert.False(t, res.KB.Manifest.OK, v.msg)
		errs := strings.Join(res.Diagnostics.ManifestErrors, "\n")
		assert.Contains(t, errs, "byte mismatch for concept_dictionary.v0.json", v.msg)
		assert.Contains(t, errs, "sha mismatch for concept_dictionary.v0.json", v.msg)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	dir := iotesting.WriteKB(t)
	require.Nil(t, os.Remove(filepath.Join(dir, kb.ManifestFile)))

	rec := &recorder{}
	res, err := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), rec).Load(dir)
	require.Nil(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"manifest missing: kb_v0_manifest.json"},
		res.Diagnostics.ManifestErrors)
	assert.Equal(t, []string{"manifest_missing"}, rec.loader)

	_, err = iokb.New(iotesting.SetupKBConfig(t, dir, config.FailClosed), nil).Load(dir)
	var lerr *iokb.LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "manifest_missing", lerr.Reason)
}

func TestLoadParseFailed(t *testing.T) {
	dir := iotesting.WriteKB(t)
	iotesting.WriteKBFiles(t, dir, map[string]string{kb.SafetyRulesFile: `{"rules": [`})

	rec := &recorder{}
	res, err := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), rec).Load(dir)
	require.Nil(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "parse_failed", res.Reason)
	require.Len(t, res.Diagnostics.ManifestErrors, 1)
	assert.Contains(t, res.Diagnostics.ManifestErrors[0], kb.SafetyRulesFile)
	assert.Equal(t, []string{"parse_failed"}, rec.loader)

	_, err = iokb.New(iotesting.SetupKBConfig(t, dir, config.FailClosed), nil).Load(dir)
	var lerr *iokb.LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "parse_failed", lerr.Reason)

	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.KBParseError, gnErr.Code)
	assert.Contains(t, err.Error(), kb.SafetyRulesFile)
}

func TestLoadFailuresAreNotCached(t *testing.T) {
	dir := iotesting.WriteKB(t)
	good := iotesting.FixtureTables()[kb.SafetyRulesFile]
	iotesting.WriteKBFiles(t, dir, map[string]string{kb.SafetyRulesFile: `[`})
	l := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailOpen), nil)

	res, err := l.Load(dir)
	require.Nil(t, err)
	assert.False(t, res.OK)

	iotesting.WriteKBFiles(t, dir, map[string]string{kb.SafetyRulesFile: good})
	future := time.Now().Add(time.Hour)
	require.Nil(t, os.Chtimes(filepath.Join(dir, kb.SafetyRulesFile), future, future))
	res, err = l.Load(dir)
	require.Nil(t, err)
	assert.True(t, res.OK)
}

func TestLoadDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := iotesting.SetupKBConfig(t, dir, config.FailClosed)
	cfg.Update([]config.Option{config.OptKBDisable(true)})

	res, err := iokb.New(cfg, nil).Load("")
	require.Nil(t, err)
	assert.False(t, res.OK)
	assert.True(t, res.Disabled)
	assert.Equal(t, "disabled_by_env", res.Reason)
	assert.Nil(t, res.KB)
}

func TestLoadOldVersion(t *testing.T) {
	dir := t.TempDir()
	files := iotesting.FixtureTables()
	for k, v := range files {
		files[k] = strings.Replace(v, `"kb_version": "v0.1.0"`, `"kb_version": "v0.0.3"`, 1)
	}
	iotesting.WriteKBFiles(t, dir, files)
	iotesting.WriteManifest(t, dir)

	res, err := iokb.New(iotesting.SetupKBConfig(t, dir, config.FailClosed), nil).Load(dir)
	require.Nil(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "v0.0.3", res.KB.KBVersion)
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Contains(t, res.Diagnostics.Warnings[0], "older than")
}

func TestSignature(t *testing.T) {
	dir := t.TempDir()
	sig := iokb.Signature(dir)
	parts := strings.Split(sig, "|")
	require.Len(t, parts, 6)
	assert.Equal(t, "concept_dictionary.v0.json:missing", parts[0])
	assert.Equal(t, "kb_v0_manifest.json:missing", parts[5])

	iotesting.WriteKBFiles(t, dir, map[string]string{kb.ConceptDictionaryFile: "{}"})
	parts = strings.Split(iokb.Signature(dir), "|")
	fields := strings.Split(parts[0], ":")
	require.Len(t, fields, 3)
	assert.Equal(t, "2", fields[2])
}

func mustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.Nil(t, err)
	return wd
}
