package store

import (
	"errors"
	"fmt"
)

// RecoverableError is implemented by every structured error the store
// package returns for a condition a caller might want to branch on. It
// mirrors the error taxonomy the coordinator logs against: duplicate-column
// migrations are benign, other migration failures are warnings, validation
// failures drop one record, and fatal startup failures abort the process.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// ErrDuplicateColumn is the sentinel matched by DuplicateColumnError.
var ErrDuplicateColumn = errors.New("column already exists")

// ErrMigrationWarning is the sentinel matched by MigrationWarningError.
var ErrMigrationWarning = errors.New("migration statement failed")

// ErrValidation is the sentinel matched by ValidationError.
var ErrValidation = errors.New("record failed validation")

// ErrFatalStartup is the sentinel matched by FatalStartupError.
var ErrFatalStartup = errors.New("fatal startup failure")

// DuplicateColumnError describes an ALTER TABLE ADD COLUMN failure because the
// column already exists. This is benign on replay. RunAdditiveMigrations does
// not construct it: it recognises that case by the driver's message text and
// skips it.
type DuplicateColumnError struct {
	Table      string
	Column     string
	Underlying error
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %s.%s already exists", e.Table, e.Column)
}
func (e *DuplicateColumnError) ErrorCode() string { return "DUPLICATE_COLUMN" }
func (e *DuplicateColumnError) Context() map[string]string {
	return map[string]string{"table": e.Table, "column": e.Column}
}
func (e *DuplicateColumnError) SuggestedAction() string { return "none; expected on replay" }
func (e *DuplicateColumnError) Is(target error) bool    { return target == ErrDuplicateColumn }
func (e *DuplicateColumnError) Unwrap() error           { return e.Underlying }

// MigrationWarningError wraps a non-duplicate-column additive-migration
// failure that does not abort startup. RunAdditiveMigrations does not
// construct it: it logs such failures as warnings and continues to the next
// entry.
type MigrationWarningError struct {
	Description string
	Underlying  error
}

func (e *MigrationWarningError) Error() string {
	return fmt.Sprintf("migration %q failed: %v", e.Description, e.Underlying)
}
func (e *MigrationWarningError) ErrorCode() string { return "MIGRATION_WARNING" }
func (e *MigrationWarningError) Context() map[string]string {
	return map[string]string{"description": e.Description}
}
func (e *MigrationWarningError) SuggestedAction() string {
	return "inspect the schema; the registry retries this entry on next startup"
}
func (e *MigrationWarningError) Is(target error) bool { return target == ErrMigrationWarning }
func (e *MigrationWarningError) Unwrap() error         { return e.Underlying }

// ValidationError reports that a single record failed a repository-boundary
// invariant (missing referenced id, negative duration, ...). The caller
// drops the offending record and continues processing its batch.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s invalid: %s", e.Entity, e.Field, e.Reason)
}
func (e *ValidationError) ErrorCode() string { return "VALIDATION" }
func (e *ValidationError) Context() map[string]string {
	return map[string]string{"entity": e.Entity, "field": e.Field, "reason": e.Reason}
}
func (e *ValidationError) SuggestedAction() string { return "drop the offending record and continue" }
func (e *ValidationError) Is(target error) bool    { return target == ErrValidation }

// FatalStartupError reports a condition the coordinator cannot recover from:
// SQLite failed to open, or the thumbnail directory could not be created.
type FatalStartupError struct {
	Component  string
	Underlying error
}

func (e *FatalStartupError) Error() string {
	return fmt.Sprintf("fatal startup failure in %s: %v", e.Component, e.Underlying)
}
func (e *FatalStartupError) ErrorCode() string { return "FATAL_STARTUP" }
func (e *FatalStartupError) Context() map[string]string {
	return map[string]string{"component": e.Component}
}
func (e *FatalStartupError) SuggestedAction() string {
	return "check filesystem permissions and disk space"
}
func (e *FatalStartupError) Is(target error) bool { return target == ErrFatalStartup }
func (e *FatalStartupError) Unwrap() error         { return e.Underlying }

// IsDuplicateColumn reports whether err represents a benign duplicate-column
// migration failure, by typed match first and sentinel fallback second.
func IsDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	var dce *DuplicateColumnError
	if errors.As(err, &dce) {
		return true
	}
	return errors.Is(err, ErrDuplicateColumn)
}
