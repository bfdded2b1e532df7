// Package iokb implements kb.Loader on top of a directory of JSON
// tables. Compiled results are cached per directory and keyed by a
// signature built from modification times and sizes of the files.
package iokb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/telemetry"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlib"
)

// entry is an immutable cache slot value. It is replaced as a whole.
type entry struct {
	signature string
	result    *kb.Result
}

type loader struct {
	dir      string
	disabled bool
	failMode string
	metrics  telemetry.Recorder

	// cache maps an absolute directory to *entry.
	cache sync.Map
}

// New creates a loader. KB settings are read from cfg once, here.
// A nil recorder disables metrics.
func New(cfg *config.Config, rec telemetry.Recorder) kb.Loader {
	return &loader{
		dir:      cfg.KBDir(),
		disabled: cfg.KB.Disable,
		failMode: cfg.KB.FailMode,
		metrics:  telemetry.OrNop(rec),
	}
}

// Load implements kb.Loader.
func (l *loader) Load(dir string) (*kb.Result, error) {
	return l.load(dir, false)
}

// Reload implements kb.Loader.
func (l *loader) Reload(dir string) (*kb.Result, error) {
	return l.load(dir, true)
}

func (l *loader) failClosed() bool {
	return l.failMode == config.FailClosed
}

func (l *loader) load(dir string, force bool) (*kb.Result, error) {
	dir = l.resolveDir(dir)

	if l.disabled {
		return &kb.Result{
			Disabled:    true,
			SourceDir:   dir,
			FailMode:    l.failMode,
			Reason:      ReasonDisabled,
			Diagnostics: emptyDiagnostics(),
		}, nil
	}

	for _, name := range kb.RequiredFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			continue
		}
		l.metrics.LoaderError(telemetry.ReasonMissingRequiredFile)
		diag := emptyDiagnostics()
		diag.ManifestErrors = []string{"missing required kb file: " + name}
		reason := MissingFileReason(name)
		slog.Warn("Knowledge base file is missing",
			"dir", dir, "file", name, "fail_mode", l.failMode)
		if l.failClosed() {
			return nil, newLoadError(reason, diag, MissingFileError(dir, name))
		}
		return l.failed(dir, reason, diag), nil
	}

	sig := Signature(dir)
	if !force {
		if v, ok := l.cache.Load(dir); ok {
			e := v.(*entry)
			if e.signature == sig {
				return e.result, nil
			}
		}
	}

	tables, err := readTables(dir)
	if err != nil {
		l.metrics.LoaderError(telemetry.ReasonParseFailed)
		diag := emptyDiagnostics()
		diag.ManifestErrors = []string{err.Error()}
		slog.Error("Cannot parse knowledge base", "dir", dir, "error", err)
		if l.failClosed() {
			return nil, newLoadError(ReasonParseFailed, diag, err)
		}
		return l.failed(dir, ReasonParseFailed, diag), nil
	}

	k := kb.Assemble(tables)

	mv, reason := l.checkManifest(dir)
	if reason != "" && l.failClosed() {
		diag := emptyDiagnostics()
		diag.ManifestErrors = mv.Errors
		var gnErr = ManifestValidationError(dir, mv.Errors)
		if reason == ReasonManifestMissing {
			gnErr = ManifestMissingError(dir)
		}
		return nil, newLoadError(reason, diag, gnErr)
	}

	k.SourceDir = dir
	k.FailMode = l.failMode
	k.LoadedAt = time.Now().UTC()
	k.Manifest = mv
	k.Diagnostics.ManifestErrors = mv.Errors
	k.Diagnostics.Warnings = versionWarnings(k.KBVersion)

	res := &kb.Result{
		OK:          true,
		SourceDir:   dir,
		FailMode:    l.failMode,
		Diagnostics: k.Diagnostics,
		KB:          k,
	}
	l.cache.Store(dir, &entry{signature: sig, result: res})

	slog.Info("Knowledge base loaded",
		"dir", dir,
		"kb_version", k.KBVersion,
		"concepts", len(k.Concepts),
		"rules", len(k.Rules),
		"duplicates", len(k.Diagnostics.DuplicateConceptIDs),
		"synthetic", k.Diagnostics.SyntheticConceptsCount,
		"manifest_errors", len(mv.Errors),
	)
	return res, nil
}

func (l *loader) resolveDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = l.dir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func (l *loader) failed(dir, reason string, diag kb.Diagnostics) *kb.Result {
	return &kb.Result{
		SourceDir:   dir,
		FailMode:    l.failMode,
		Reason:      reason,
		Diagnostics: diag,
	}
}

// checkManifest validates the manifest of dir. A non-empty reason means
// the manifest is missing or does not match the files.
func (l *loader) checkManifest(dir string) (kb.ManifestValidation, string) {
	path := filepath.Join(dir, kb.ManifestFile)
	if _, err := os.Stat(path); err != nil {
		l.metrics.LoaderError(telemetry.ReasonManifestMissing)
		return kb.ManifestValidation{
			KBVersion:    kb.UnknownVersion,
			GeneratedUTC: kb.UnknownVersion,
			Errors:       []string{"manifest missing: " + kb.ManifestFile},
		}, ReasonManifestMissing
	}

	var mv kb.ManifestValidation
	raw, err := readJSON(path)
	if err != nil {
		mv = kb.ManifestValidation{
			KBVersion:    kb.UnknownVersion,
			GeneratedUTC: kb.UnknownVersion,
			Errors:       []string{"manifest parse failed: " + err.Error()},
		}
	} else {
		mv = ValidateManifest(kb.ParseManifest(raw), dir)
	}
	if mv.OK {
		return mv, ""
	}
	l.metrics.LoaderError(telemetry.ReasonManifestValidationFailed)
	slog.Warn("Knowledge base manifest validation failed",
		"dir", dir, "errors", len(mv.Errors))
	return mv, ReasonManifestValidationFailed
}

// readTables decodes the five tables of dir. Errors are always
// ParseError values.
func readTables(dir string) (kb.Tables, *gn.Error) {
	var res kb.Tables
	parsers := []struct {
		name  string
		parse func(any)
	}{
		{kb.ConceptDictionaryFile, func(v any) { res.Concepts = kb.ParseConceptDictionary(v) }},
		{kb.IngredientOntologyFile, func(v any) { res.Ingredients = kb.ParseIngredientOntology(v) }},
		{kb.SafetyRulesFile, func(v any) { res.Rules = kb.ParseSafetyRules(v) }},
		{kb.InteractionRulesFile, func(v any) { res.Interactions = kb.ParseInteractionRules(v) }},
		{kb.ClimateNormalsFile, func(v any) { res.Climate = kb.ParseClimateNormals(v) }},
	}
	for _, p := range parsers {
		raw, err := readJSON(filepath.Join(dir, p.name))
		if err != nil {
			return res, err
		}
		p.parse(raw)
	}
	return res, nil
}

func readJSON(path string) (any, *gn.Error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseError(path, err)
	}
	var res any
	enc := gnfmt.GNjson{}
	if err = enc.Decode(bs, &res); err != nil {
		return nil, ParseError(path, err)
	}
	return res, nil
}

// Signature fingerprints the tables and the manifest of dir by
// modification time and size.
func Signature(dir string) string {
	names := append(append([]string{}, kb.RequiredFiles...), kb.ManifestFile)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			parts = append(parts, name+":missing")
			continue
		}
		parts = append(parts, name+":"+
			strconv.FormatInt(info.ModTime().UnixNano(), 10)+":"+
			strconv.FormatInt(info.Size(), 10))
	}
	return strings.Join(parts, "|")
}

func versionWarnings(version string) []string {
	if !gnlib.IsVersion(version) {
		return nil
	}
	if gnlib.CmpVersion(version, config.MinKBVersion) >= 0 {
		return nil
	}
	msg := fmt.Sprintf("kb_version %s is older than %s", version, config.MinKBVersion)
	slog.Warn("Knowledge base is older than supported",
		"kb_version", version, "min_version", config.MinKBVersion)
	return []string{msg}
}

func emptyDiagnostics() kb.Diagnostics {
	return kb.Diagnostics{
		DuplicateConceptIDs: []string{},
		SyntheticConceptIDs: []string{},
		ManifestErrors:      []string{},
	}
}
