package common

import "errors"

var (
	// ErrNotFound is returned by stores when no entry has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when an entry is rejected before it is persisted.
	ErrValidation = errors.New("validation error")
)
