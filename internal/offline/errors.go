package offline

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no cached response matches a request.
	ErrNotFound = errors.New("no cached response")
	// ErrStateTransition is returned when a lifecycle step runs out of order.
	ErrStateTransition = errors.New("invalid worker state transition")
	// ErrStorageClosed is returned by storages used after Close.
	ErrStorageClosed = errors.New("storage is closed")
)

// Fetch operations recorded in FetchError.Op.
const (
	OpInstall = "install"
	OpFetch   = "fetch"
)

// FetchError describes a request that could not be served or stored.
//
// With Op set to OpInstall it is an asset that could not be cached during
// install; those are logged and never abort the install. With OpFetch it is
// a request that failed on the network and had no cached fallback.
type FetchError struct {
	URL    string
	Op     string
	Status int // non-zero when the origin answered with a non-2xx status
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
