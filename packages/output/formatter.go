package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
)

// Formatter is implemented by every output format.
type Formatter interface {
	FormatHeader(version, runID string)
	FormatEvent(ev runner.Event)
	FormatResult(result *runner.RunResult)
	FormatError(err error)
}

// Flushable is implemented by formatters that write once the run is over.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Options configures New. A nil Writer means stdout.
type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter registered under name.
func New(name string, opts Options) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(
			WithWriter(opts.Writer),
			WithVerbose(opts.Verbose),
			WithNoColor(opts.NoColor),
		), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(opts.Writer)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(opts.Writer)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(opts.Writer)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json, junit or tap)", name)
	}
}

// caseCause strips the case wrapper so the underlying failure is reported
// with its own message.
func caseCause(err error) error {
	var caseErr *runner.CaseError
	if errors.As(err, &caseErr) {
		return caseErr.Err
	}
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return caseCause(err).Error()
}
