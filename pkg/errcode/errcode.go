package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Knowledge base errors
	KBMissingFileError
	KBParseError
	KBManifestValidationError
	KBManifestMissingError
	KBManifestWriteError

	// Replay errors
	ReplayCasesReadError
	ReplayCasesParseError
	ReplayNoCasesError

	// Report storage errors
	ReportOpenError
	ReportSaveError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableExistsCheckError
	DBTableCheckError
	DBDropTableError
	DBCopyError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
)
