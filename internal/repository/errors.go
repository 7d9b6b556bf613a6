package repository

import "errors"

// Sentinel errors shared by the postgres and in-memory implementations so
// services can branch with errors.Is regardless of the backing store.
var (
	// ErrNotFound signals the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict signals a compare-and-append lost the race: the
	// grievance's version moved past the one the caller read.
	ErrVersionConflict = errors.New("grievance version conflict")
)
