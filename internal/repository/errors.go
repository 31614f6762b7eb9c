package repository

import "errors"

var (
	// ErrEmailExists is returned when an insert collides with the unique
	// email index among non-deleted accounts.
	ErrEmailExists = errors.New("email already exists")

	// ErrNotFound is returned when no matching, non-deleted account exists.
	ErrNotFound = errors.New("account not found")
)
