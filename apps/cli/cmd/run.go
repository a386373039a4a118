package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/abdul-hamid-achik/limetest/packages/fixture"
	"github.com/abdul-hamid-achik/limetest/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [case...]",
	Short: "Build, serve and check test cases",
	Long: `Run test cases. Each case is built against the library flags reported
by pkg-config, started as a server, fed the requests in its curl.txt and
checked against its ans.txt.

Examples:
  limetest run
  limetest run test2 test4
  limetest run -C ./tests --readiness probe
  limetest run test1 --update-answers
  limetest run --output junit --output-file report.xml`,
	Args: cobra.ArbitraryArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

func runCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(cmd)
	if err != nil {
		return err
	}

	// Setup output writer
	var outWriter io.Writer = cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return &configError{err: fmt.Errorf("cannot create output file: %w", err)}
		}
		defer f.Close()
		outWriter = f
	}

	format := strings.ToLower(outputFlag)
	opts := output.Options{
		Writer:  outWriter,
		Verbose: s.config.GetVerbose(),
		NoColor: s.config.GetNoColor(),
	}
	if _, err := output.New(format, opts); err != nil {
		return &usageError{err: err}
	}

	// Servers live in their own sessions and never see the terminal's
	// Ctrl+C, so cancellation has to reach the runner.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runTests := func() error {
		// Fresh formatter per run so accumulating formats start empty
		formatter, _ := output.New(format, opts)
		runID := uuid.NewString()
		formatter.FormatHeader(version, runID)

		r, err := runner.NewRunner(s.runnerConfig(runID), runner.WithObserver(formatter.FormatEvent))
		if err != nil {
			formatter.FormatError(err)
			return &exitError{code: ExitConfigError, err: err}
		}

		result, runErr := r.Run(ctx, args)
		if runErr != nil {
			formatter.FormatError(runErr)
		}
		formatter.FormatResult(result)

		// Flush output for formatters that accumulate results
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(result.Duration); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}
		}

		if runErr != nil {
			return &exitError{code: exitCode(runErr), err: runErr}
		}
		return nil
	}

	err = runTests()
	if !watchFlag {
		return err
	}

	names := args
	if len(names) == 0 {
		names = s.config.Cases
	}
	return watchCases(ctx, cmd, s.root, names, runTests)
}

// watchCases re-runs the suite whenever a fixture file of one of the cases
// changes, until ctx is cancelled.
func watchCases(ctx context.Context, cmd *cobra.Command, root string, names []string, rerun func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, name := range names {
		dir := filepath.Join(root, name)
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to watch %s: %v\n", dir, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce rapid saves into one run
	var debounce <-chan time.Time
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) && isFixtureFile(event.Name) {
				changed = event.Name
				debounce = time.After(WatchDebounceDelay)
			}

		case <-debounce:
			debounce = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running tests...\n\n", changed)
			_ = rerun() // failures are already reported by the formatter
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// isFixtureFile reports whether a change to path should trigger a re-run.
// Answers rewritten by --update-answers do not count.
func isFixtureFile(path string) bool {
	base := filepath.Base(path)
	switch {
	case base == fixture.RequestScriptFile:
		return true
	case base == fixture.AnswersFile:
		return !updateAnswersFlag
	}
	switch filepath.Ext(base) {
	case fixture.SourceExt, ".h", ".hpp":
		return true
	}
	return false
}
