package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a gateway call is already outstanding for
	// the controller.
	ErrBusy = errors.New("another request is in progress")

	// ErrStale is returned when a gateway result arrives for a session
	// that was restarted or replaced while the call was in flight. The
	// result is discarded.
	ErrStale = errors.New("result belongs to an abandoned session")
)

// ValidationError reports invalid caller input. State is never mutated
// when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidInput marks ValidationError for IsValidation.
func (e *ValidationError) InvalidInput() bool { return true }

// IsValidation reports whether err is invalid caller input: a
// *ValidationError, or any error in the chain with an InvalidInput method
// returning true, such as vark's empty input error.
func IsValidation(err error) bool {
	var in interface{ InvalidInput() bool }
	return errors.As(err, &in) && in.InvalidInput()
}

// GatewayError reports a failed remote call: network failure, non-success
// response, or a malformed payload.
type GatewayError struct {
	Op      string // e.g. "start test"
	Status  int    // HTTP status, 0 if no response
	Message string // user-facing message, if the server sent one
	Err     error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UserMessage returns text suitable for showing to the learner.
func (e *GatewayError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Could not " + e.Op + ". Check your connection and try again."
}

// StateError reports an operation invoked in a state that forbids it.
// These indicate caller misuse.
type StateError struct {
	Op    string
	State State
	Err   error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (state %s)", e.Op, e.Err, e.State)
	}
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return e.Err }

// asGatewayError wraps err as a *GatewayError for op unless it already is one.
func asGatewayError(op string, err error) error {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &GatewayError{Op: op, Err: err}
}

// malformed builds a GatewayError for a payload that violates the protocol.
func malformed(op, format string, args ...any) error {
	return &GatewayError{Op: op, Err: fmt.Errorf("malformed response: "+format, args...)}
}

// UserMessage extracts a learner-facing message from any error returned by
// this package.
func UserMessage(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.UserMessage()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	if IsValidation(err) {
		return err.Error()
	}
	if errors.Is(err, ErrBusy) {
		return "Please wait for the current request to finish."
	}
	return err.Error()
}
