package ioreport

import (
	"fmt"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
)

// OpenError is returned when the SQLite report file cannot be
// opened or prepared.
func OpenError(path string, err error) error {
	msg := `Cannot open replay report <em>%s</em>

<em>How to fix:</em>
  1. Check that the directory is writable
  2. Remove the file if it is not a SQLite database`

	return &gn.Error{
		Code: errcode.ReportOpenError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot open report %s: %w", path, err),
	}
}

// SaveError is returned when a run cannot be written.
func SaveError(path string, err error) error {
	msg := "Cannot save replay run into <em>%s</em>"

	return &gn.Error{
		Code: errcode.ReportSaveError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot save report %s: %w", path, err),
	}
}
