package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/limetest/packages/build"
	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/abdul-hamid-achik/limetest/packages/replay"
	"github.com/abdul-hamid-achik/limetest/packages/server"
)

// Exit codes for limetest CLI
const (
	// ExitSuccess indicates all cases passed
	ExitSuccess = 0

	// ExitTestFailure indicates a response did not match its answer
	ExitTestFailure = 1

	// ExitBuildError indicates a case program failed to compile
	ExitBuildError = 2

	// ExitConfigError indicates a configuration, fixture or flag resolution error
	ExitConfigError = 3

	// ExitServerError indicates a server could not be started, awaited or
	// replayed against
	ExitServerError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries an exit code for an error the formatter already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		reported   *exitError
		usage      *usageError
		cfgErr     *configError
		content    *compare.ContentMismatchError
		structural *compare.StructuralMismatchError
		buildErr   *build.BuildError
		resolution *build.ResolutionError
		start      *server.StartError
		readiness  *server.ReadinessError
		replayErr  *replay.ReplayError
		caseErr    *runner.CaseError
	)
	switch {
	case errors.As(err, &reported):
		return reported.code
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &content), errors.As(err, &structural):
		return ExitTestFailure
	case errors.As(err, &buildErr):
		return ExitBuildError
	case errors.As(err, &resolution):
		return ExitConfigError
	case errors.As(err, &start), errors.As(err, &readiness), errors.As(err, &replayErr):
		return ExitServerError
	case errors.As(err, &caseErr):
		// Missing fixtures or unreadable answers
		return ExitConfigError
	}
	return ExitTestFailure
}
