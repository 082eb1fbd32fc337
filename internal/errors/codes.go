// Package errors provides structured error classification for the save
// system. Callers branch on a machine-readable Code to choose recovery UX
// (e.g. "restored from backup" vs. "data permanently unavailable").
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Slot errors
	CodeInvalidSlot Code = "SLOT_INVALID_INDEX"
	CodeSlotEmpty   Code = "SLOT_EMPTY"

	// Document errors
	CodeDecodeFailed   Code = "DOCUMENT_DECODE_FAILED"
	CodeDigestMismatch Code = "DOCUMENT_DIGEST_MISMATCH"

	// Recovery errors
	CodeCorruptedNoBackup Code = "SAVE_CORRUPTED_NO_BACKUP"

	// Migration errors. CodeMigrationValidationFailed covers both abort
	// causes inside a step: a failed transform and a post-validation
	// rejection.
	CodeMigrationValidationFailed Code = "MIGRATION_VALIDATION_FAILED"
	CodeMigrationNoPath           Code = "MIGRATION_NO_PATH"

	// Integrity errors
	CodeCriticalIntegrityViolation Code = "INTEGRITY_CRITICAL_VIOLATION"
	CodeCheckExecutionError        Code = "INTEGRITY_CHECK_EXECUTION"

	// Storage errors
	CodeStoreIO Code = "STORE_IO"
)

// Terminal reports whether an error code represents a condition the save
// system cannot recover from locally. Non-terminal codes are handled via
// backup fallback or repair before they reach the caller.
func (c Code) Terminal() bool {
	switch c {
	case CodeCorruptedNoBackup,
		CodeMigrationValidationFailed,
		CodeMigrationNoPath,
		CodeCriticalIntegrityViolation,
		CodeDecodeFailed:
		return true
	case CodeDigestMismatch,
		CodeCheckExecutionError:
		return false
	}
	return false
}
