package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/build"
	"github.com/abdul-hamid-achik/limetest/packages/command"
	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/fixture"
	"github.com/abdul-hamid-achik/limetest/packages/replay"
	"github.com/abdul-hamid-achik/limetest/packages/server"
	"github.com/google/uuid"
)

// Config holds everything a run needs to know about the suite and toolchain.
type Config struct {
	// Root is the suite directory. Case directories, artifacts and the
	// server working directory are all relative to it. A relative Root is
	// resolved against the current directory, "" meaning ".".
	Root    string
	Library string
	// Cases is the list run when Run is given no names.
	Cases []string
	// Flags skips pkg-config when non-empty.
	Flags        []string
	PkgConfig    string
	Compiler     string
	Standard     string
	OutDir       string
	ExtraArgs    []string
	BuildTimeout time.Duration
	// Env is appended to the environment of every subprocess.
	Env []string

	Readiness   server.ReadinessConfig
	StopTimeout time.Duration
	LogOutput   bool

	Client         string
	ClientArgs     []string
	Rate           float64
	RequestTimeout time.Duration

	// UpdateAnswers writes captured responses to the answers file instead of
	// comparing against it.
	UpdateAnswers bool
	// Clean removes the artifact of every case that passed.
	Clean bool
	// RunID is generated when empty.
	RunID string
}

type Runner struct {
	config    *Config
	resolver  *build.Resolver
	builder   *build.Builder
	launcher  *server.Launcher
	readiness server.Readiness
	replayer  *replay.Replayer
	observer  Observer
}

// Option is a functional option for Runner.
type Option func(*runnerOptions)

type runnerOptions struct {
	commands  command.Runner
	observer  Observer
	readiness server.Readiness
}

// WithCommandRunner replaces the os/exec runner used for pkg-config, the
// compiler and the HTTP client. Servers are always started for real.
func WithCommandRunner(r command.Runner) Option {
	return func(o *runnerOptions) {
		o.commands = r
	}
}

// WithObserver registers a progress callback.
func WithObserver(fn Observer) Option {
	return func(o *runnerOptions) {
		o.observer = fn
	}
}

// WithReadiness overrides the policy built from Config.Readiness.
func WithReadiness(r server.Readiness) Option {
	return func(o *runnerOptions) {
		o.readiness = r
	}
}

// NewRunner wires the build, launch and replay stages for cfg.
func NewRunner(cfg *Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve suite directory: %w", err)
	}
	resolved := *cfg
	resolved.Root = root
	cfg = &resolved

	var o runnerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.commands == nil {
		o.commands = command.NewExecRunner(cfg.Env)
	}
	if o.readiness == nil {
		r, err := server.NewReadiness(cfg.Readiness)
		if err != nil {
			return nil, err
		}
		o.readiness = r
	}

	builder := build.NewBuilder(o.commands, cfg.Root,
		build.WithCompiler(cfg.Compiler),
		build.WithStandard(cfg.Standard),
		build.WithOutDir(cfg.OutDir),
		build.WithExtraArgs(cfg.ExtraArgs...),
		build.WithBuildTimeout(cfg.BuildTimeout),
	)

	launchOpts := []server.Option{
		server.WithEnv(cfg.Env),
		server.WithStopTimeout(cfg.StopTimeout),
	}
	if cfg.LogOutput {
		launchOpts = append(launchOpts, server.WithLogDir(builder.OutputDir()))
	}

	replayer := replay.NewReplayer(o.commands,
		replay.WithClient(cfg.Client),
		replay.WithClientArgs(cfg.ClientArgs...),
		replay.WithDir(cfg.Root),
		replay.WithRate(cfg.Rate),
		replay.WithRequestTimeout(cfg.RequestTimeout),
	)

	return &Runner{
		config:    cfg,
		resolver:  build.NewResolver(o.commands, build.WithPkgConfig(cfg.PkgConfig)),
		builder:   builder,
		launcher:  server.NewLauncher(cfg.Root, launchOpts...),
		readiness: o.readiness,
		replayer:  replayer,
		observer:  o.observer,
	}, nil
}

type RunResult struct {
	RunID    string
	Flags    build.Flags
	Cases    []*CaseResult
	Duration time.Duration
}

// Passed reports whether every case that ran passed.
func (r *RunResult) Passed() bool {
	for _, c := range r.Cases {
		if c.State != Passed {
			return false
		}
	}
	return true
}

type CaseResult struct {
	Name     string
	State    State
	FailedAt State // meaningful only when State == Failed
	Err      error
	Artifact string
	// Responses are in request-script order.
	Responses []replay.Response
	Expected  []string
	Latency   replay.Latency
	Duration  time.Duration
}

// Actual returns the captured response bodies.
func (c *CaseResult) Actual() []string {
	return replay.Bodies(c.Responses)
}

// Run resolves the build flags once, then runs names in order, or the
// configured default cases when names is empty. It stops at the first
// failing case and returns the partial result along with that case's error.
func (r *Runner) Run(ctx context.Context, names []string) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{RunID: r.config.RunID}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if len(names) == 0 {
		names = r.config.Cases
	}
	if len(names) == 0 {
		names = fixture.DefaultCases
	}

	flags, err := r.ResolveFlags(ctx)
	if err != nil {
		return result, err
	}
	result.Flags = flags
	r.emit(Event{Stage: Pending, Message: "got module flags: " + flags.String()})

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		cr := r.runCase(ctx, name, flags)
		result.Cases = append(result.Cases, cr)
		if cr.Err != nil {
			return result, cr.Err
		}
	}

	return result, nil
}

// ResolveFlags returns the configured static flags, or asks pkg-config.
func (r *Runner) ResolveFlags(ctx context.Context) (build.Flags, error) {
	library := r.config.Library
	if library == "" {
		library = "http"
	}
	if len(r.config.Flags) > 0 {
		return build.Static(library, r.config.Flags)
	}
	return r.resolver.Resolve(ctx, library)
}

func (r *Runner) runCase(ctx context.Context, name string, flags build.Flags) *CaseResult {
	start := time.Now()
	cr := &CaseResult{Name: name, State: Pending}
	defer func() {
		cr.Duration = time.Since(start)
	}()

	fail := func(stage State, err error) *CaseResult {
		cr.FailedAt = stage
		cr.State = Failed
		cr.Err = &CaseError{Case: name, Stage: stage, Err: err}
		return cr
	}

	c, err := fixture.Load(r.config.Root, name)
	if err != nil {
		return fail(Pending, err)
	}
	if !r.config.UpdateAnswers {
		if err := c.Validate(); err != nil {
			return fail(Pending, err)
		}
	}

	artifact, err := r.builder.Build(ctx, name, flags)
	if err != nil {
		return fail(Built, err)
	}
	c.ArtifactPath = artifact
	cr.Artifact = artifact
	cr.State = Built
	r.emit(Event{Case: name, Stage: Built, Message: "compiled: " + fixture.SourceFile(name)})

	// A malformed script must fail before any server is started.
	requests, err := replay.LoadScript(c.RequestScriptPath)
	if err != nil {
		return fail(Replayed, err)
	}

	handle, err := r.launcher.Start(ctx, artifact)
	if err != nil {
		return fail(Launched, err)
	}
	cr.State = Launched

	stopped := false
	stop := func() error {
		if stopped {
			return nil
		}
		stopped = true
		err := handle.Stop()
		r.emit(Event{Case: name, Stage: Terminated, Message: "killed exe: " + filepath.Base(artifact)})
		return err
	}
	defer func() {
		_ = stop()
	}()

	target := r.config.Readiness.URL
	if target == "" {
		target = replay.FirstURL(requests)
	}
	if err := r.readiness.Wait(ctx, target); err != nil {
		return fail(Launched, err)
	}
	if exited, exitErr := handle.Exited(); exited {
		return fail(Launched, &server.StartError{
			Artifact: artifact,
			Err:      fmt.Errorf("server exited before replay: %w", exitErr),
		})
	}

	responses, err := r.replayer.Run(ctx, c.RequestScriptPath, requests)
	cr.Responses = responses
	if err != nil {
		return fail(Replayed, err)
	}
	r.emit(Event{Case: name, Stage: Replayed, Message: "curl: " + c.RequestScriptPath})
	cr.Latency = replay.Summarize(responses)
	cr.State = Replayed

	if err := stop(); err != nil {
		return fail(Terminated, err)
	}
	cr.State = Terminated

	actual := replay.Bodies(responses)
	if r.config.UpdateAnswers {
		if err := compare.WriteAnswers(c.AnswersPath, actual); err != nil {
			return fail(Compared, err)
		}
		cr.Expected = actual
		r.emit(Event{Case: name, Stage: Compared, Message: "wrote answers to: " + c.AnswersPath})
	} else {
		expected, err := compare.LoadAnswers(c.AnswersPath)
		if err != nil {
			return fail(Compared, err)
		}
		cr.Expected = expected
		r.emit(Event{Case: name, Stage: Compared, Message: "read answers from: " + c.AnswersPath})

		if err := compare.Compare(expected, actual); err != nil {
			return fail(Compared, err)
		}
	}
	cr.State = Compared

	if r.config.Clean {
		if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fail(Passed, fmt.Errorf("cannot remove artifact: %w", err))
		}
	}

	cr.State = Passed
	r.emit(Event{Case: name, Stage: Passed, Message: "passed: " + name})
	return cr
}

func (r *Runner) emit(ev Event) {
	if r.observer != nil {
		r.observer(ev)
	}
}
