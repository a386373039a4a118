package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/command"
	"github.com/abdul-hamid-achik/limetest/packages/fixture"
)

const (
	// DefaultCompiler is the C++ compiler used for test programs.
	DefaultCompiler = "g++"
	// DefaultStandard is the language standard passed as -std.
	DefaultStandard = "c++23"
	// ArtifactExt is appended to the case name to form the executable name.
	ArtifactExt = ".out"
)

// strictFlags enable all warnings and turn them into errors.
var strictFlags = []string{"-Wall", "-Wextra", "-Werror"}

// Builder compiles the program of a test case.
type Builder struct {
	runner    command.Runner
	root      string
	outDir    string
	compiler  string
	standard  string
	extraArgs []string
	timeout   time.Duration
}

// BuilderOption is a functional option for Builder.
type BuilderOption func(*Builder)

// WithCompiler overrides the compiler binary.
func WithCompiler(name string) BuilderOption {
	return func(b *Builder) {
		if name != "" {
			b.compiler = name
		}
	}
}

// WithStandard overrides the -std value.
func WithStandard(std string) BuilderOption {
	return func(b *Builder) {
		if std != "" {
			b.standard = std
		}
	}
}

// WithOutDir places artifacts in dir instead of the suite root.
// A relative dir is taken relative to the suite root.
func WithOutDir(dir string) BuilderOption {
	return func(b *Builder) {
		b.outDir = dir
	}
}

// WithExtraArgs adds compiler arguments placed before the source file.
func WithExtraArgs(args ...string) BuilderOption {
	return func(b *Builder) {
		b.extraArgs = append(b.extraArgs, args...)
	}
}

// WithBuildTimeout bounds a single compiler invocation.
func WithBuildTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) {
		b.timeout = d
	}
}

// NewBuilder creates a Builder for the suite rooted at root.
func NewBuilder(runner command.Runner, root string, opts ...BuilderOption) *Builder {
	b := &Builder{
		runner:   runner,
		root:     root,
		compiler: DefaultCompiler,
		standard: DefaultStandard,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputDir returns the directory artifacts are written to.
func (b *Builder) OutputDir() string {
	switch {
	case b.outDir == "":
		return b.root
	case filepath.IsAbs(b.outDir):
		return b.outDir
	default:
		return filepath.Join(b.root, b.outDir)
	}
}

// ArtifactPath returns where the executable of case name is written.
func (b *Builder) ArtifactPath(name string) string {
	return filepath.Join(b.OutputDir(), name+ArtifactExt)
}

// Command returns the compiler invocation for case name.
func (b *Builder) Command(name string, flags Flags) command.Command {
	args := []string{"-std=" + b.standard}
	args = append(args, strictFlags...)
	args = append(args, b.extraArgs...)
	args = append(args, "-o", b.ArtifactPath(name), fixture.SourceFile(name))
	args = append(args, flags...)

	cmd := command.New(b.compiler, args...)
	cmd.Dir = b.root
	return cmd
}

// Build compiles case name and returns the path of the executable.
func (b *Builder) Build(ctx context.Context, name string, flags Flags) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	source := fixture.SourceFile(name)
	cmd := b.Command(name, flags)

	res, err := b.runner.Run(ctx, cmd)
	if err != nil {
		return "", &BuildError{Source: source, Command: cmd.String(), Err: err}
	}
	if !res.Success() {
		return "", &BuildError{
			Source:      source,
			Command:     cmd.String(),
			ExitCode:    res.ExitCode,
			Diagnostics: string(res.Stderr),
		}
	}

	artifact := b.ArtifactPath(name)
	if err := checkExecutable(artifact); err != nil {
		return "", &BuildError{Source: source, Command: cmd.String(), Err: err}
	}

	return artifact, nil
}

// checkExecutable verifies that path is a regular file with an execute bit.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact missing: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("artifact %s is not a regular file", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("artifact %s is not executable", path)
	}
	return nil
}
