package writecraft

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrNoAPIKey indicates no API key is configured in any credential store.
	ErrNoAPIKey = errors.New("writecraft: no API key configured")

	// ErrInvalidAPIKey indicates the API key was rejected by the server.
	ErrInvalidAPIKey = errors.New("writecraft: invalid API key")

	// ErrRateLimited indicates the API rate limit has been exceeded.
	ErrRateLimited = errors.New("writecraft: rate limit exceeded")
)

// NetworkError represents a transport failure: connection setup,
// a mid-stream disconnect, or a failed body read. Never retried internally.
type NetworkError struct {
	Op  string // What was being attempted ("send request", "read stream", ...)
	Err error  // Underlying transport error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError represents an error reported by the API: a non-success HTTP
// status before the stream starts, or an in-stream error event.
type APIError struct {
	StatusCode int    // HTTP status code, 0 for in-stream error events
	Type       string // Server error type (e.g., "overloaded_error"), if known
	Message    string // Error message from the server
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error (ErrInvalidAPIKey, ErrRateLimited, ...)
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("api error: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits and transient server errors; the caller
// owns any backoff policy.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}

	return errors.Is(err, ErrRateLimited)
}

// IsRateLimited checks if an error is a rate-limit signal. The wrapped
// APIError carries the raw server text to drive caller-side backoff.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) || errors.Is(err, ErrNoAPIKey) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// HTTP 401/403 indicate auth issues
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}

	return false
}
