package models

import "fmt"

// NotFoundError is returned by star mutations that reference a frequency
// absent from the library. Counter-recording operations never return it,
// they silently drop events for unknown frequencies instead.
type NotFoundError struct {
	SourceID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("frequency %q not found", e.SourceID)
}

// ValidationError rejects a snapshot document before any of it is applied.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot: " + e.Reason
}

// PersistenceError wraps a failed write of the snapshot file.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
