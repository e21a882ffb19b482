package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RateLimitError means the provider answered 429.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// UnavailableError means the provider could not be reached or failed
// server-side.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "llm provider unavailable"
	}
	return fmt.Sprintf("llm provider unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// InvalidResponseError means the reply was not the JSON that was asked for.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid llm response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// ErrTruncated means generation stopped at MaxTokens.
var ErrTruncated = errors.New("llm response truncated at max tokens")

// transient reports whether retrying err could help.
func transient(err error) bool {
	var rl *RateLimitError
	var un *UnavailableError
	return errors.As(err, &rl) || errors.As(err, &un)
}

// statusError maps an HTTP status from a provider SDK error.
func statusError(status int, err error) error {
	switch {
	case status == 429:
		return &RateLimitError{Err: err}
	case status >= 500 || status == 0:
		return &UnavailableError{Err: err}
	default:
		return fmt.Errorf("llm request rejected (%d): %w", status, err)
	}
}
