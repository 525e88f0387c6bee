// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabaseCorrupted marks stored rows that can no longer be decoded.
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// ErrServiceUnavailable wraps 5xx responses and connection failures
	// from the signal and trust services.
	ErrServiceUnavailable = errors.New("service unavailable")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError is an error whose message is printed to the operator as is,
// optionally followed by a hint on how to fix it.
type UserError struct {
	Err         error
	UserMessage string
	Hint        string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with an operator facing message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// NewUserErrorWithHint is NewUserError plus a remediation hint.
func NewUserErrorWithHint(userMessage, hint string, err error) error {
	return &UserError{UserMessage: userMessage, Hint: hint, Err: err}
}

// HintFor returns the hint attached anywhere in err's chain.
func HintFor(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Hint
	}
	return ""
}

// IsRetryable reports whether an operation failing with err may succeed on
// another attempt. Cancellation never is.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
