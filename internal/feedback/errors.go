package feedback

import (
	"errors"
	"fmt"
)

// Step names a remote call in the submission sequence.
type Step string

const (
	StepGenerate Step = "generate"
	StepPersist  Step = "persist"
	StepFetch    Step = "fetch"
)

var (
	// ErrNoToken is returned when the token source has no token.
	ErrNoToken = errors.New("no auth token available")

	// ErrTokenExpired is returned when the bearer token is a JWT whose exp
	// claim is in the past.
	ErrTokenExpired = errors.New("auth token expired")
)

// StatusError reports a response whose status code is not the one the step
// requires.
type StatusError struct {
	Step       Step
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Step, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Step, e.StatusCode, e.Body)
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Step Step
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Step, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidResponseError reports a success status with an unusable body.
type InvalidResponseError struct {
	Step Step
	Err  error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Step, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from err, or 0 when there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
