package server

import (
	"fmt"
	"time"
)

// StartError reports that a server artifact could not be launched, or that
// it exited before it was stopped.
type StartError struct {
	Artifact string
	Err      error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start server %s: %v", e.Artifact, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ReadinessError reports that a server did not become ready in time.
type ReadinessError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *ReadinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server %s not ready after %v: %v", e.URL, e.Timeout, e.Err)
	}
	return fmt.Sprintf("server %s not ready after %v", e.URL, e.Timeout)
}

func (e *ReadinessError) Unwrap() error {
	return e.Err
}
