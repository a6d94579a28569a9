package judges

import (
	"errors"
	"fmt"
)

// ErrEntityNotFound means the registry has no person for the external id.
// The item is skipped, never deleted locally.
var ErrEntityNotFound = errors.New("not found")

// FetchError wraps a failed registry call for one entity. Unwrap keeps the
// registry error reachable so transient failures stay retryable.
type FetchError struct {
	ExternalID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PersistenceError is a local store failure while reconciling one entity.
// It is never retried.
type PersistenceError struct {
	ExternalID string
	Op         string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
