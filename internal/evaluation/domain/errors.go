package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrClientsNotConfigured is returned when a required provider API key is
	// missing; no network call is attempted.
	ErrClientsNotConfigured = errors.New("API clients are not initialized due to missing keys")

	// ErrNoCompletedJobs is returned when a round summary is requested before
	// any card evaluation in the round has completed.
	ErrNoCompletedJobs = errors.New("no completed evaluations found for this round yet")
)

// MalformedResponseError wraps an LLM response that could not be parsed as the
// expected structured format after stripping markup. RawText preserves the
// provider output for diagnosis.
type MalformedResponseError struct {
	RawText string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed LLM response: %v (raw: %s)", e.Err, e.RawText)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
