package core

import "errors"

// Error taxonomy of the roster engine. Callers test with errors.Is; the
// wrapped message carries the detail.
var (
	// ErrInvalidInput is returned for a non-coercible id, an empty required
	// field or an id that would break uniqueness.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a remove or lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrNotLoaded is returned by mutations and validation before the store
	// has been loaded.
	ErrNotLoaded = errors.New("roster not loaded")

	// ErrMalformedRow is returned for a row reference outside the store.
	ErrMalformedRow = errors.New("malformed row")
)
