package journal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound matches any NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an operation against a row that no longer exists.
// Callers must re-fetch state before retrying.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError aggregates every violated rule of a submit so the user can
// correct them all in one pass. It is returned before any write is attempted.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// PartialWriteError reports a child-collection write that failed after the
// owning row was already committed. The database is in a user-visible
// inconsistent state; the interface must not hide that.
type PartialWriteError struct {
	Owner string
	ID    uint
	Err   error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s #%d was already committed, but a child write failed: %v", e.Owner, e.ID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
