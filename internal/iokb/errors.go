package iokb

import (
	"fmt"
	"runtime"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/gnames/gn"
)

// Load-fatal reasons carried by LoadError.
const (
	ReasonDisabled                 = "disabled_by_env"
	ReasonParseFailed              = "parse_failed"
	ReasonManifestValidationFailed = "manifest_validation_failed"
	ReasonManifestMissing          = "manifest_missing"
	reasonMissingFilePrefix        = "missing_file:"
)

// MissingFileReason is the reason code for an absent table file.
func MissingFileReason(name string) string {
	return reasonMissingFilePrefix + name
}

// LoadError is returned by a fail-closed loader. Reason is a
// machine-readable code, the wrapped *gn.Error carries the user message.
type LoadError struct {
	Reason      string
	Diagnostics kb.Diagnostics
	err         *gn.Error
}

func (e *LoadError) Error() string {
	return e.err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.err
}

func newLoadError(reason string, diag kb.Diagnostics, err *gn.Error) *LoadError {
	return &LoadError{Reason: reason, Diagnostics: diag, err: err}
}

func MissingFileError(dir, name string) *gn.Error {
	msg := `Knowledge base file <em>%s</em> is missing in <em>%s</em>

<em>How to fix:</em>
  1. Check the KB directory setting (SKINSAFETY_KB_DIR).
  2. Restore the file from the KB release.
  3. Or set <em>SKINSAFETY_KB_FAIL_MODE=open</em> to run without the KB.`
	vars := []any{name, dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.KBMissingFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: missing required kb file: %s",
			fn, name),
	}
}

func ParseError(path string, err error) *gn.Error {
	msg := "Cannot parse knowledge base file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.KBParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot parse %s: %w", fn, path, err),
	}
}

func ManifestValidationError(dir string, errs []string) *gn.Error {
	msg := `Knowledge base manifest in <em>%s</em> does not match the files (%d errors)

<em>Possible causes:</em>
  • A table was edited after the release was built
  • The release was copied partially

<em>How to fix:</em>
  Regenerate the manifest with <em>skinsafety manifest</em>
  or restore the original release files.`
	vars := []any{dir, len(errs)}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.KBManifestValidationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: manifest validation failed (%d errors)",
			fn, len(errs)),
	}
}

func ManifestMissingError(dir string) *gn.Error {
	msg := "Knowledge base manifest <em>%s</em> is missing in <em>%s</em>"
	vars := []any{kb.ManifestFile, dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.KBManifestMissingError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: manifest missing: %s",
			fn, kb.ManifestFile),
	}
}

func ManifestWriteError(path string, err error) error {
	msg := "Cannot write manifest <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.KBManifestWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write manifest: %w", fn, err),
	}
}
