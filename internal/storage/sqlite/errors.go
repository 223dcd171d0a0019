package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is rather than string comparison.
var (
	// ErrNotFound indicates the requested issue, project, or comment does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrCycle indicates a reparent or dependency edge would create a
	// cycle in the parent graph.
	ErrCycle = errors.New("dependency cycle")

	// ErrConflict indicates the target identifier already exists.
	ErrConflict = errors.New("identifier conflict")

	// ErrInvalidID indicates a malformed or empty identifier.
	ErrInvalidID = errors.New("invalid identifier")
)

// wrapNotFound converts sql.ErrNoRows into ErrNotFound with context about
// what was being looked up.
func wrapNotFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}
