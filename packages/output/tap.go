package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
)

// TAPFormatter formats run results in TAP (Test Anything Protocol) format
type TAPFormatter struct {
	writer  io.Writer
	runID   string
	results []tapResult
	bailOut string
}

type tapResult struct {
	number   int
	name     string
	passed   bool
	stage    string
	error    string
	duration time.Duration
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *TAPFormatter) FormatHeader(version, runID string) {
	f.runID = runID
}

func (f *TAPFormatter) FormatEvent(runner.Event) {
	// Header is written in Flush
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	if result == nil {
		return
	}
	f.runID = result.RunID
	for _, c := range result.Cases {
		tr := tapResult{
			number:   len(f.results) + 1,
			name:     c.Name,
			passed:   c.State == runner.Passed,
			error:    errString(c.Err),
			duration: c.Duration,
		}
		if c.State == runner.Failed {
			tr.stage = c.FailedAt.String()
		}
		f.results = append(f.results, tr)
	}
}

// FormatError records a fatal error. Since the run stops at the first
// failure, it is reported as a bail out.
func (f *TAPFormatter) FormatError(err error) {
	if err != nil {
		f.bailOut = strings.ReplaceAll(errString(err), "\n", " ")
	}
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	if f.runID != "" {
		fmt.Fprintf(f.writer, "# run %s\n", f.runID)
	}
	fmt.Fprintf(f.writer, "1..%d\n", len(f.results))

	for _, r := range f.results {
		if r.passed {
			fmt.Fprintf(f.writer, "ok %d - %s\n", r.number, r.name)
			continue
		}

		fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.name)
		fmt.Fprintf(f.writer, "  ---\n")
		if r.stage != "" {
			fmt.Fprintf(f.writer, "  stage: %s\n", r.stage)
		}
		if r.error != "" {
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.error))
		}
		fmt.Fprintf(f.writer, "  duration_ms: %d\n", r.duration.Milliseconds())
		fmt.Fprintf(f.writer, "  ...\n")
	}

	if f.bailOut != "" {
		fmt.Fprintf(f.writer, "Bail out! %s\n", f.bailOut)
	}
	fmt.Fprintf(f.writer, "# time %dms\n", totalDuration.Milliseconds())

	return nil
}

func escapeYAML(s string) string {
	// Simple YAML escaping - wrap in quotes if contains special chars
	if strings.ContainsAny(s, ":\n\t\"'[]{}#&*!|>%@`\\") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\t", "\\t")
		return "\"" + s + "\""
	}
	return s
}
