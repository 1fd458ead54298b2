package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Typed outcomes. Store operations return these (wrapped) so callers can
// translate them without string matching.
var (
	// ErrNotFound means the operation referenced a JA ID with no matching
	// active record (or, for history, no record at all).
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a create or activate would produce a second active
	// record for the same JA ID.
	ErrConflict = errors.New("active record already exists")

	// ErrInvalidState means the request was well-formed but semantically
	// impossible given current data, e.g. shortening an item with no
	// recorded length, or a concurrent writer got there first.
	ErrInvalidState = errors.New("invalid record state")

	// ErrIntegrityViolation means the database rejected a write that passed
	// application-level checks. It signals a validation bug, not user error,
	// and callers log it at error severity.
	ErrIntegrityViolation = errors.New("storage integrity violation")
)

// InvalidInputError reports a malformed or out-of-range input field.
// Operations return it before performing any write.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// mapConstraintErr classifies a SQLite error by extended result code.
// A violation of the single-active unique index is a Conflict (a concurrent
// writer won the race); any other constraint failure means application-level
// validation let something through that the schema caught.
func mapConstraintErr(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
	}
	return err
}
