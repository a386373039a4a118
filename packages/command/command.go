package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/alessio/shellescape"
)

// Command describes one invocation of an external tool.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current process environment.
	Env []string
}

// New returns a Command for name with args.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// String renders the command line with shell quoting, suitable for logs.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Name}, c.Args...))
}

// Result is the outcome of a command that was started.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands and waits for them to finish.
//
// An error is returned only when the command could not be run at all. A
// command that ran and exited non-zero yields a Result with ExitCode set.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) {
	return f(ctx, cmd)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env holds extra KEY=VALUE pairs passed to every command.
	Env []string
}

// NewExecRunner creates an ExecRunner with the given extra environment.
func NewExecRunner(env []string) *ExecRunner {
	return &ExecRunner{Env: env}
}

// Run executes cmd and captures its standard streams.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	execCmd.Env = r.Environ(cmd.Env)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	err := execCmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", cmd, ctxErr)
		}
		return result, fmt.Errorf("%s: %w", cmd, err)
	}

	return result, nil
}

// Environ returns the environment for a child process: the current process
// environment, then the runner's extra variables, then extra.
func (r *ExecRunner) Environ(extra []string) []string {
	env := os.Environ()
	env = append(env, r.Env...)
	return append(env, extra...)
}
