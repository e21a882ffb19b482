package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/abhisek/stylequiz/internal/assessment"
)

var (
	// ErrUnauthorized means the platform rejected the stored token.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound means the requested record does not exist, e.g. a learner
	// who has not taken the VARK questionnaire yet.
	ErrNotFound = errors.New("not found")

	// ErrMalformed means the platform answered with a payload that does not
	// match the protocol.
	ErrMalformed = errors.New("malformed response")

	// errRejected is a success=false envelope on a 2xx response.
	errRejected = errors.New("request rejected")
)

// IsUnauthorized reports whether err means the learner must log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a missing-record response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// retryable reports whether a failed read-only call may be attempted again.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gwErr *assessment.GatewayError
	if !errors.As(err, &gwErr) {
		return false
	}
	switch {
	case errors.Is(err, ErrMalformed), errors.Is(err, errRejected):
		return false
	case gwErr.Status == 0:
		return true // transport failure
	case gwErr.Status == http.StatusTooManyRequests:
		return true
	case gwErr.Status >= 500:
		return true
	}
	return false
}
