package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNotFound is returned when the registry answers 404. It is an expected
// outcome, not a failure of the call.
var ErrNotFound = errors.New("not found")

// ErrUnsupportedJurisdiction is returned when a jurisdiction cannot be
// translated into a registry filter.
var ErrUnsupportedJurisdiction = errors.New("unsupported jurisdiction")

// RemoteAPIError is a non-2xx, non-404 answer from the registry.
type RemoteAPIError struct {
	Status int
	Body   string
}

func (e *RemoteAPIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("registry returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("registry returned %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// TransportError wraps failures below HTTP: DNS, connection, timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsTransient reports whether err is worth retrying: timeouts, connection
// failures, 5xx and 429 answers.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == http.StatusTooManyRequests
	}

	var tErr *TransportError
	return errors.As(err, &tErr)
}
