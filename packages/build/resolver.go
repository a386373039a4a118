package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/limetest/packages/command"
)

// DefaultPkgConfig is the package-metadata tool queried for build flags.
const DefaultPkgConfig = "pkg-config"

// Flags are the compiler and linker tokens needed to build against a
// library, in the order the metadata tool printed them.
type Flags []string

func (f Flags) String() string {
	return strings.Join(f, " ")
}

// Resolver discovers build flags with pkg-config.
type Resolver struct {
	runner    command.Runner
	pkgConfig string
}

// ResolverOption is a functional option for Resolver.
type ResolverOption func(*Resolver)

// WithPkgConfig overrides the pkg-config binary.
func WithPkgConfig(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.pkgConfig = name
		}
	}
}

// NewResolver creates a Resolver that runs commands through runner.
func NewResolver(runner command.Runner, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		runner:    runner,
		pkgConfig: DefaultPkgConfig,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the --cflags and --libs tokens of library.
func (r *Resolver) Resolve(ctx context.Context, library string) (Flags, error) {
	cmd := command.New(r.pkgConfig, library, "--cflags", "--libs")

	res, err := r.runner.Run(ctx, cmd)
	if err != nil {
		return nil, &ResolutionError{Library: library, Command: cmd.String(), Err: err}
	}
	if !res.Success() {
		return nil, &ResolutionError{
			Library: library,
			Command: cmd.String(),
			Reason:  fmt.Sprintf("exit status %d", res.ExitCode),
		}
	}

	flags := Flags(strings.Fields(string(res.Stdout)))
	if len(flags) == 0 {
		return nil, &ResolutionError{Library: library, Command: cmd.String(), Reason: "empty output"}
	}

	return flags, nil
}

// Static returns flags given up front, for setups without pkg-config
// metadata. It enforces the same non-empty invariant as Resolve.
func Static(library string, tokens []string) (Flags, error) {
	var flags Flags
	for _, t := range tokens {
		flags = append(flags, strings.Fields(t)...)
	}
	if len(flags) == 0 {
		return nil, &ResolutionError{Library: library, Reason: "no flags configured"}
	}
	return flags, nil
}
