package replay

import (
	"context"
	"errors"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/command"
	"golang.org/x/time/rate"
)

// DefaultClient is the HTTP client binary invoked for each request line.
const DefaultClient = "curl"

// Response is the captured output of one request line.
type Response struct {
	Request  Request
	Body     string
	ExitCode int
	Duration time.Duration
}

// Bodies returns the captured bodies in order.
func Bodies(responses []Response) []string {
	bodies := make([]string, len(responses))
	for i, r := range responses {
		bodies[i] = r.Body
	}
	return bodies
}

// Replayer runs request scripts through an external HTTP client.
type Replayer struct {
	runner         command.Runner
	client         string
	clientArgs     []string
	dir            string
	limiter        *rate.Limiter
	requestTimeout time.Duration
}

// Option is a functional option for Replayer.
type Option func(*Replayer)

// WithClient overrides the client binary.
func WithClient(name string) Option {
	return func(r *Replayer) {
		if name != "" {
			r.client = name
		}
	}
}

// WithClientArgs adds arguments placed before every line's own arguments.
func WithClientArgs(args ...string) Option {
	return func(r *Replayer) {
		r.clientArgs = append(r.clientArgs, args...)
	}
}

// WithDir runs the client from dir.
func WithDir(dir string) Option {
	return func(r *Replayer) {
		r.dir = dir
	}
}

// WithRate paces requests to at most perSecond invocations per second.
// Zero or less leaves them unpaced.
func WithRate(perSecond float64) Option {
	return func(r *Replayer) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRequestTimeout bounds each client invocation.
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Replayer) {
		r.requestTimeout = d
	}
}

// NewReplayer creates a Replayer that runs the client through runner.
func NewReplayer(runner command.Runner, opts ...Option) *Replayer {
	r := &Replayer{
		runner: runner,
		client: DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command returns the client invocation for req.
func (r *Replayer) Command(req Request) command.Command {
	args := make([]string, 0, len(r.clientArgs)+len(req.Args))
	args = append(args, r.clientArgs...)
	args = append(args, req.Args...)
	cmd := command.New(r.client, args...)
	cmd.Dir = r.dir
	return cmd
}

// Replay reads the script at path and runs its requests. The i-th response
// belongs to the i-th non-empty line.
func (r *Replayer) Replay(ctx context.Context, path string) ([]Response, error) {
	requests, err := LoadScript(path)
	if err != nil {
		var replayErr *ReplayError
		if errors.As(err, &replayErr) {
			return nil, err
		}
		return nil, &ReplayError{Script: path, Err: err}
	}
	return r.Run(ctx, path, requests)
}

// Run issues requests strictly one after another. A client that exits
// non-zero still yields a response with whatever it printed.
func (r *Replayer) Run(ctx context.Context, script string, requests []Request) ([]Response, error) {
	responses := make([]Response, 0, len(requests))
	for _, req := range requests {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return responses, &ReplayError{Script: script, Line: req.Line, Err: err}
			}
		}

		res, err := r.invoke(ctx, req)
		if err != nil {
			return responses, &ReplayError{Script: script, Line: req.Line, Err: err}
		}

		responses = append(responses, Response{
			Request:  req,
			Body:     string(res.Stdout),
			ExitCode: res.ExitCode,
			Duration: res.Duration,
		})
	}
	return responses, nil
}

func (r *Replayer) invoke(ctx context.Context, req Request) (*command.Result, error) {
	if r.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()
	}
	return r.runner.Run(ctx, r.Command(req))
}
