package signals

import (
	"context"
	"errors"
)

var (
	// ErrCancelled indicates the call was deliberately superseded or aborted.
	ErrCancelled = errors.New("signal request cancelled")
	// ErrTransport indicates a non-2xx response or a connectivity failure.
	ErrTransport = errors.New("signal service transport failure")
	// ErrMalformed indicates the response body could not be decoded.
	ErrMalformed = errors.New("malformed signal response")
)

// IsCancellation reports whether err is a cancellation rather than a failure.
// Deadline expiry is a failure, not a cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
