package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBulkLoad marks a failed initial catalog read.
	ErrBulkLoad = errors.New("catalog bulk load failed")
	// ErrAlreadyLoaded is returned when the catalog is loaded twice in one session.
	ErrAlreadyLoaded = errors.New("catalog already loaded")
	// ErrDetailFetch marks a failed per-entry enrichment read.
	ErrDetailFetch = errors.New("detail fetch failed")
	// ErrNotFound is returned when the remote API has no such entry.
	ErrNotFound = errors.New("pokemon not found")
	// ErrCircuitOpen is returned while detail reads are short-circuited.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// DetailFetchError describes an enrichment read that left an entry summary-only.
type DetailFetchError struct {
	ID  string
	Err error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("fetch detail for %s: %v", e.ID, e.Err)
}

// Unwrap exposes both the category sentinel and the cause.
func (e *DetailFetchError) Unwrap() []error {
	return []error{ErrDetailFetch, e.Err}
}
