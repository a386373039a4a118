package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/abdul-hamid-achik/limetest/packages/replay"
	"github.com/fatih/color"
)

// truncate shortens long response bodies for display
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) info(format string, args ...any) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", green("[INFO]"), fmt.Sprintf(format, args...))
}

func (f *ConsoleFormatter) FormatHeader(version, runID string) {
	if !f.verbose {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s %s\n", bold("limetest"), version, faint("run "+runID))
}

// FormatEvent prints progress as it happens.
func (f *ConsoleFormatter) FormatEvent(ev runner.Event) {
	f.info("%s", ev.Message)
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	if result == nil {
		return
	}

	if f.verbose {
		cyan := color.New(color.FgCyan).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		fmt.Fprintln(f.writer)
		for _, c := range result.Cases {
			symbol := color.New(color.FgGreen).Sprint("✓")
			if c.State == runner.Failed {
				symbol = red("✗")
			}
			fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, c.Name, cyan(fmt.Sprintf("(%dms)", c.Duration.Milliseconds())))

			if c.Latency.Count > 0 {
				fmt.Fprintf(f.writer, "    %s\n", formatLatency(c.Latency))
			}
			for _, r := range c.Responses {
				if r.ExitCode != 0 {
					fmt.Fprintf(f.writer, "    %s line %d: client exited with %d\n", red("!"), r.Request.Line, r.ExitCode)
				}
			}
			if c.State == runner.Failed && len(c.Expected) > 0 {
				if diff := compare.Diff(c.Expected, c.Actual()); diff != "" {
					for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
						fmt.Fprintf(f.writer, "    %s\n", colorDiffLine(line))
					}
				}
			}
		}
		fmt.Fprintf(f.writer, "\nCases: %d run, flags: %s\n", len(result.Cases), result.Flags)
		fmt.Fprintf(f.writer, "Time:  %dms\n\n", result.Duration.Milliseconds())
	}

	if len(result.Cases) > 0 && result.Passed() {
		f.info("All test passed")
	}
}

// FormatError prints a failure the way a person reading the log expects:
// mismatches as expected/got pairs, everything else by its own message.
func (f *ConsoleFormatter) FormatError(err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed).SprintFunc()
	tag := red("[ERROR]")

	var mismatch *compare.ContentMismatchError
	if errors.As(err, &mismatch) {
		fmt.Fprintf(f.writer, "%s test failed\n\texpected: %s\n\tgot: %s\n",
			tag, truncate(mismatch.Expected, 500), truncate(mismatch.Actual, 500))
		return
	}

	fmt.Fprintf(f.writer, "%s %s\n", tag, errString(err))
}

func formatLatency(l replay.Latency) string {
	return fmt.Sprintf("%d requests, min %s, p50 %s, p95 %s, max %s",
		l.Count, l.Min, l.P50, l.P95, l.Max)
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return color.New(color.Bold).Sprint(line)
	case strings.HasPrefix(line, "+"):
		return color.New(color.FgGreen).Sprint(line)
	case strings.HasPrefix(line, "-"):
		return color.New(color.FgRed).Sprint(line)
	case strings.HasPrefix(line, "@@"):
		return color.New(color.FgCyan).Sprint(line)
	}
	return line
}
