package iometrics

import (
	"fmt"
	"runtime"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
)

func WriteMetricsError(path string, err error) error {
	msg := "Cannot write metrics to <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WriteFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write metrics: %w", fn, err),
	}
}
