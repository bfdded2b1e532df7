package iodb

import (
	"errors"
	"testing"

	"github.com/aurora-skin/skinsafety/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsStructure(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		msg   string
		err   error
		code  gn.ErrorCode
		vars  int
		cause bool
	}{
		{"connection", ConnectionError("localhost", 5432, "db", "postgres", cause),
			errcode.DBConnectionError, 4, true},
		{"not connected", NotConnectedError(), errcode.DBNotConnectedError, 0, false},
		{"table exists", TableExistsCheckError("replay_runs", cause),
			errcode.DBTableExistsCheckError, 1, true},
		{"table check", TableCheckError(cause), errcode.DBTableCheckError, 0, true},
		{"drop table", DropTableError("replay_runs", cause),
			errcode.DBDropTableError, 1, true},
		{"copy", CopyError("replay_results", cause), errcode.DBCopyError, 1, true},
	}

	for _, v := range tests {
		gnErr, ok := v.err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.NotEmpty(t, gnErr.Msg, v.msg)
		assert.Len(t, gnErr.Vars, v.vars, v.msg)
		if v.cause {
			assert.ErrorIs(t, gnErr.Err, cause, v.msg)
		}
	}
}
