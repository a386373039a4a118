package build

import (
	"fmt"
	"strings"
)

// ResolutionError reports that the build flags of a library could not be
// discovered. No case can build without them.
type ResolutionError struct {
	Library string
	Command string
	Reason  string
	Err     error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("failed to get pkg-config data for lib: %s", e.Library)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// BuildError reports that the compiler rejected a test program, or that it
// did not leave a usable artifact behind.
type BuildError struct {
	Source      string
	Command     string
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *BuildError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "failed to compile file: %s", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	} else if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit status %d)", e.ExitCode)
	}
	if diag := strings.TrimRight(e.Diagnostics, "\n"); diag != "" {
		sb.WriteString("\n")
		sb.WriteString(diag)
	}
	return sb.String()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
