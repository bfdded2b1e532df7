package ioreplay

import (
	"fmt"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
)

// CasesReadError is returned when the cases file cannot be read.
func CasesReadError(path string, err error) error {
	msg := "Cannot read replay cases from <em>%s</em>"

	return &gn.Error{
		Code: errcode.ReplayCasesReadError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

// CasesParseError is returned when the cases file is not valid YAML
// or has an unexpected layout.
func CasesParseError(path string, err error) error {
	msg := `Cannot parse replay cases in <em>%s</em>

<em>Expected layout:</em>
  cases:
    - name: pregnant retinoid
      message: can I use retinol?
      profile:
        pregnancy_status: pregnant
      expect:
        block_level: BLOCK`

	return &gn.Error{
		Code: errcode.ReplayCasesParseError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot parse %s: %w", path, err),
	}
}

// NoCasesError is returned when a cases file has no usable cases.
func NoCasesError(path string) error {
	msg := "No replay cases found in <em>%s</em>"

	return &gn.Error{
		Code: errcode.ReplayNoCasesError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("no cases in %s", path),
	}
}
