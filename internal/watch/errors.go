package watch

import (
	"errors"
	"fmt"
)

// FetchKind classifies fetch failures for backoff purposes.
type FetchKind string

const (
	// FetchNetwork covers transport-level failures: DNS, connection reset,
	// timeout.
	FetchNetwork FetchKind = "network"
	// FetchHTTPStatus covers completed requests with a non-2xx status.
	FetchHTTPStatus FetchKind = "http_status"
)

// FetchError describes a failed page fetch.
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchHTTPStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StoreError describes a failed store operation.
type StoreError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrTooManyFailures is returned by the daemon loop when the
// consecutive-failure ceiling is reached. It maps to a non-zero exit.
var ErrTooManyFailures = errors.New("too many consecutive failures")

// IsNetworkError reports whether err is a transport-level fetch failure.
// These get escalating backoff in the daemon; everything else gets the flat
// runtime delay.
func IsNetworkError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchNetwork
}
