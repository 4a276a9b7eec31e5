package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates the document has no analysable content.
	// Non-fatal: processing yields an empty analysis rather than a crash.
	ErrEmptyDocument = errors.New("document has no analysable content")

	// Provider Errors.

	// ErrRateLimited indicates the provider signalled throttling.
	// Transient: retried up to a bound, then terminal for that call.
	ErrRateLimited = errors.New("rate limited")

	// ErrProvider indicates a non-retryable provider failure
	// (authentication, malformed request, network failure).
	ErrProvider = errors.New("provider error")

	// ErrConfiguration indicates the provider credentials are missing or
	// invalid. Callers switch to fallback mode for the whole request
	// instead of spending a retry budget.
	ErrConfiguration = errors.New("provider not configured")
)

// Retryable reports whether the error is transient and worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
