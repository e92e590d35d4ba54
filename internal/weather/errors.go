package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProvider is returned when the service has no upstream configured.
	ErrNoProvider = errors.New("no weather provider configured")
	// ErrProbeDisabled is returned when no probe city is configured.
	ErrProbeDisabled = errors.New("upstream probe disabled")
)

// ValidationError reports malformed user input. It maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError reports a failed call to the weather API after retries.
// StatusCode is zero when no HTTP response was received. It maps to HTTP 500.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream responded %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PartialDataError reports an upstream field that was missing or rejected.
// It is logged and never returned to the caller.
type PartialDataError struct {
	Field  string
	Reason string
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
