package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/core/config"
	"github.com/abdul-hamid-achik/limetest/packages/core/env"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/abdul-hamid-achik/limetest/packages/server"
	"github.com/spf13/cobra"
)

var (
	// Suite flags, shared by every command
	dirFlag     string
	configFlag  string
	envFileFlag string
	libraryFlag string
	verboseFlag bool
	noColorFlag bool

	// Run flags
	compilerFlag      string
	stdFlag           string
	clientFlag        string
	readinessFlag     string
	delayFlag         string
	probeURLFlag      string
	outputFlag        string
	outputFileFlag    string
	updateAnswersFlag bool
	cleanFlag         bool
	watchFlag         bool
)

func addSuiteFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVarP(&dirFlag, "dir", "C", getEnvString("LIMETEST_DIR", "."), "Suite directory holding the case directories (env: LIMETEST_DIR)")
	f.StringVar(&configFlag, "config", getEnvString("LIMETEST_CONFIG", ""), "Path to config file (env: LIMETEST_CONFIG)")
	f.StringVar(&envFileFlag, "env-file", getEnvString("LIMETEST_ENV_FILE", ""), "Path to .env file passed to every subprocess (env: LIMETEST_ENV_FILE)")
	f.StringVar(&libraryFlag, "library", getEnvString("LIMETEST_LIBRARY", ""), "pkg-config name of the library under test (env: LIMETEST_LIBRARY)")
	f.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("LIMETEST_VERBOSE", false), "Show latencies and answer diffs (env: LIMETEST_VERBOSE)")
	f.BoolVar(&noColorFlag, "no-color", getEnvBool("LIMETEST_NO_COLOR", false), "Disable colored output (env: LIMETEST_NO_COLOR)")
}

func addRunFlags(c *cobra.Command) {
	f := c.Flags()

	// Toolchain flags
	f.StringVar(&compilerFlag, "compiler", getEnvString("LIMETEST_COMPILER", ""), "C++ compiler (default g++) (env: LIMETEST_COMPILER)")
	f.StringVar(&stdFlag, "std", getEnvString("LIMETEST_STD", ""), "C++ language standard (default c++23) (env: LIMETEST_STD)")

	// Server flags
	f.StringVar(&readinessFlag, "readiness", getEnvString("LIMETEST_READINESS", ""), "How to wait for a server: delay, probe or none (env: LIMETEST_READINESS)")
	f.StringVar(&delayFlag, "delay", getEnvString("LIMETEST_DELAY", ""), "Wait used by the delay readiness policy (e.g., 500ms) (env: LIMETEST_DELAY)")
	f.StringVar(&probeURLFlag, "probe-url", getEnvString("LIMETEST_PROBE_URL", ""), "URL polled by the probe readiness policy (default: first URL of the script) (env: LIMETEST_PROBE_URL)")

	// Replay flags
	f.StringVar(&clientFlag, "client", getEnvString("LIMETEST_CLIENT", ""), "HTTP client binary (default curl) (env: LIMETEST_CLIENT)")

	// Output flags
	f.StringVarP(&outputFlag, "output", "o", getEnvString("LIMETEST_OUTPUT", "console"), "Output format: console, json, junit, tap (env: LIMETEST_OUTPUT)")
	f.StringVar(&outputFileFlag, "output-file", getEnvString("LIMETEST_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: LIMETEST_OUTPUT_FILE)")

	// Execution flags
	f.BoolVar(&updateAnswersFlag, "update-answers", getEnvBool("LIMETEST_UPDATE_ANSWERS", false), "Write captured responses to ans.txt instead of comparing")
	f.BoolVar(&cleanFlag, "clean", getEnvBool("LIMETEST_CLEAN", false), "Remove the artifacts of passed cases (env: LIMETEST_CLEAN)")
	f.BoolVarP(&watchFlag, "watch", "w", false, "Watch case directories and re-run on changes")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		return val == "yes"
	}
	return defaultVal
}

// configError marks failures to assemble the suite configuration.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

// suite is the resolved suite directory and its effective configuration.
type suite struct {
	root   string
	config *config.Config
}

// loadSuite reads the config file of the suite directory and applies the
// command line on top of it.
func loadSuite(cmd *cobra.Command) (*suite, error) {
	root, err := filepath.Abs(dirFlag)
	if err != nil {
		return nil, &configError{err: err}
	}
	if info, err := os.Stat(root); err != nil {
		return nil, &configError{err: fmt.Errorf("cannot access suite directory: %w", err)}
	} else if !info.IsDir() {
		return nil, &configError{err: fmt.Errorf("suite directory %s is not a directory", root)}
	}

	cfg, err := config.LoadConfig(configFlag, root)
	if err != nil {
		return nil, &configError{err: err}
	}

	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, &configError{err: err}
	}
	cfg = cfg.Merge(overrides)

	if envFileFlag != "" {
		vars, err := env.LoadDotEnv(envFileFlag)
		if err != nil {
			return nil, &configError{err: err}
		}
		cfg.Env = env.Merge(cfg.Env, vars)
	}

	return &suite{root: root, config: cfg}, nil
}

// flagOverrides collects the flags that were set on the command line or
// through their LIMETEST_* variable.
func flagOverrides(cmd *cobra.Command) (*config.Config, error) {
	o := &config.Config{
		Library: libraryFlag,
		Toolchain: config.ToolchainConfig{
			Compiler: compilerFlag,
			Standard: stdFlag,
		},
		Server: config.ServerConfig{
			Readiness: readinessFlag,
			ProbeURL:  probeURLFlag,
		},
		Replay: config.ReplayConfig{
			Client: clientFlag,
		},
	}

	if delayFlag != "" {
		d, err := time.ParseDuration(delayFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid delay value %q: %w (use format like 500ms, 2s)", delayFlag, err)
		}
		o.Server.Delay = config.Duration(d)
	}

	if isSet(cmd, "verbose", "LIMETEST_VERBOSE") {
		o.Verbose = config.BoolPtr(verboseFlag)
	}
	if isSet(cmd, "no-color", "LIMETEST_NO_COLOR") {
		o.NoColor = config.BoolPtr(noColorFlag)
	}
	if isSet(cmd, "clean", "LIMETEST_CLEAN") {
		o.Clean = config.BoolPtr(cleanFlag)
	}

	return o, nil
}

func isSet(cmd *cobra.Command, name, envKey string) bool {
	if f := cmd.Flags().Lookup(name); f == nil {
		return false
	}
	return cmd.Flags().Changed(name) || os.Getenv(envKey) != ""
}

// runnerConfig translates the suite configuration for the runner.
func (s *suite) runnerConfig(runID string) *runner.Config {
	cfg := s.config
	return &runner.Config{
		Root:         s.root,
		Library:      cfg.Library,
		Cases:        cfg.Cases,
		Flags:        cfg.Toolchain.Flags,
		PkgConfig:    cfg.Toolchain.PkgConfig,
		Compiler:     cfg.Toolchain.Compiler,
		Standard:     cfg.Toolchain.Standard,
		OutDir:       cfg.OutDir,
		ExtraArgs:    cfg.Toolchain.ExtraArgs,
		BuildTimeout: cfg.Toolchain.BuildTimeout.Std(),
		Env:          cfg.Environ(),

		Readiness: server.ReadinessConfig{
			Mode:     cfg.Server.Readiness,
			Delay:    cfg.Server.Delay.Std(),
			URL:      cfg.Server.ProbeURL,
			Timeout:  cfg.Server.ProbeTimeout.Std(),
			Interval: cfg.Server.ProbeInterval.Std(),
		},
		StopTimeout: cfg.Server.StopTimeout.Std(),
		LogOutput:   cfg.Server.GetLogOutput(),

		Client:         cfg.Replay.Client,
		ClientArgs:     cfg.Replay.ClientArgs,
		Rate:           cfg.Replay.Rate,
		RequestTimeout: cfg.Replay.RequestTimeout.Std(),

		UpdateAnswers: updateAnswersFlag,
		Clean:         cfg.GetClean(),
		RunID:         runID,
	}
}
