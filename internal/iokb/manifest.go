package iokb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/gnames/gnfmt"
)

// ValidateManifest re-reads every file the manifest lists and compares
// its size and SHA-256 with the declared values. Problems are returned
// in the result, never as an error.
func ValidateManifest(m kb.Manifest, baseDir string) kb.ManifestValidation {
	res := kb.ManifestValidation{
		KBVersion:    m.KBVersion,
		GeneratedUTC: m.GeneratedUTC,
		Files:        m.Files,
		Errors:       []string{},
	}

	for _, f := range m.Files {
		path := filepath.Join(baseDir, f.Filename)
		info, err := os.Stat(path)
		if err != nil {
			res.Errors = append(res.Errors,
				fmt.Sprintf("missing file in manifest: %s", f.Filename))
			continue
		}
		if f.Bytes != nil && *f.Bytes != info.Size() {
			res.Errors = append(res.Errors,
				fmt.Sprintf("byte mismatch for %s: expected %d, got %d",
					f.Filename, *f.Bytes, info.Size()))
		}
		if f.SHA256 == "" {
			continue
		}
		sum, err := fileSHA256(path)
		if err != nil {
			res.Errors = append(res.Errors,
				fmt.Sprintf("cannot read %s: %s", f.Filename, err))
			continue
		}
		if sum != f.SHA256 {
			res.Errors = append(res.Errors,
				fmt.Sprintf("sha mismatch for %s: expected %s, got %s",
					f.Filename, f.SHA256, sum))
		}
	}

	res.OK = len(res.Errors) == 0
	return res
}

// BuildManifest describes the five tables of dir as they are now.
func BuildManifest(dir, version string, now time.Time) (kb.Manifest, error) {
	res := kb.Manifest{
		KBVersion:    version,
		GeneratedUTC: now.UTC().Format(time.RFC3339),
	}
	for _, name := range kb.RequiredFiles {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			return res, MissingFileError(dir, name)
		}
		sum, err := fileSHA256(path)
		if err != nil {
			return res, ParseError(path, err)
		}
		size := info.Size()
		res.Files = append(res.Files, kb.ManifestEntry{
			Filename: name,
			Bytes:    &size,
			SHA256:   sum,
		})
	}
	return res, nil
}

// WriteManifest builds a manifest for dir and saves it next to the
// tables. An empty version is taken from the tables.
func WriteManifest(dir, version string) (kb.Manifest, error) {
	if version == "" {
		v, err := TablesVersion(dir)
		if err != nil {
			return kb.Manifest{}, err
		}
		version = v
	}
	m, err := BuildManifest(dir, version, time.Now())
	if err != nil {
		return m, err
	}
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(m)
	path := filepath.Join(dir, kb.ManifestFile)
	if err != nil {
		return m, ManifestWriteError(path, err)
	}
	if err = os.WriteFile(path, bs, 0644); err != nil {
		return m, ManifestWriteError(path, err)
	}
	return m, nil
}

// TablesVersion reads the tables of dir and returns the kb_version
// they declare.
func TablesVersion(dir string) (string, error) {
	t, err := readTables(dir)
	if err != nil {
		return "", err
	}
	return kb.ResolveVersion(t), nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
