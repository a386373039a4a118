package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/core/env"
	"gopkg.in/yaml.v3"
)

// Config represents the limetest configuration
type Config struct {
	Library   string            `yaml:"library,omitempty"`
	Cases     []string          `yaml:"cases,omitempty"`
	OutDir    string            `yaml:"outDir,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"` // Extra environment for every subprocess
	Toolchain ToolchainConfig   `yaml:"toolchain,omitempty"`
	Server    ServerConfig      `yaml:"server,omitempty"`
	Replay    ReplayConfig      `yaml:"replay,omitempty"`
	Verbose   *bool             `yaml:"verbose,omitempty"`
	NoColor   *bool             `yaml:"noColor,omitempty"`
	Clean     *bool             `yaml:"clean,omitempty"`
}

// ToolchainConfig configures flag discovery and compilation
type ToolchainConfig struct {
	Compiler     string   `yaml:"compiler,omitempty"`
	Standard     string   `yaml:"std,omitempty"`
	PkgConfig    string   `yaml:"pkgConfig,omitempty"`
	Flags        []string `yaml:"flags,omitempty"` // Skips pkg-config when set
	ExtraArgs    []string `yaml:"extraArgs,omitempty"`
	BuildTimeout Duration `yaml:"buildTimeout,omitempty"`
}

// ServerConfig configures how servers are started, awaited and stopped
type ServerConfig struct {
	Readiness     string   `yaml:"readiness,omitempty"` // delay, probe or none
	Delay         Duration `yaml:"delay,omitempty"`
	ProbeURL      string   `yaml:"probeURL,omitempty"`
	ProbeTimeout  Duration `yaml:"probeTimeout,omitempty"`
	ProbeInterval Duration `yaml:"probeInterval,omitempty"`
	StopTimeout   Duration `yaml:"stopTimeout,omitempty"`
	LogOutput     *bool    `yaml:"logOutput,omitempty"`
}

// ReplayConfig configures the HTTP client used to replay requests
type ReplayConfig struct {
	Client         string   `yaml:"client,omitempty"`
	ClientArgs     []string `yaml:"clientArgs,omitempty"`
	Rate           float64  `yaml:"rate,omitempty"` // requests per second, 0 = unpaced
	RequestTimeout Duration `yaml:"requestTimeout,omitempty"`
}

// Duration is a time.Duration written as "500ms", "2s" in config files
type Duration time.Duration

// UnmarshalYAML parses a Go duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w (use format like 500ms, 2s)", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetClean returns whether artifacts of passed cases are removed, defaulting to false
func (c *Config) GetClean() bool {
	return getBool(c.Clean, false)
}

// GetLogOutput returns whether server output is kept, defaulting to false
func (c *ServerConfig) GetLogOutput() bool {
	return getBool(c.LogOutput, false)
}

// Environ returns Env as sorted KEY=VALUE pairs
func (c *Config) Environ() []string {
	return env.Pairs(c.Env)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".limetest.yaml",
	"limetest.yaml",
	".limetest.yml",
	".limetest.json",
}

// LoadConfig loads configuration from path, or searches dir for a config file
func LoadConfig(path, dir string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(dir)
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. YAML is a
// superset of JSON, so .json files go through the same decoder.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return DefaultConfig().Merge(&fileConfig), nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Library != "" {
		result.Library = other.Library
	}
	if len(other.Cases) > 0 {
		result.Cases = other.Cases
	}
	if other.OutDir != "" {
		result.OutDir = other.OutDir
	}

	// Toolchain
	if other.Toolchain.Compiler != "" {
		result.Toolchain.Compiler = other.Toolchain.Compiler
	}
	if other.Toolchain.Standard != "" {
		result.Toolchain.Standard = other.Toolchain.Standard
	}
	if other.Toolchain.PkgConfig != "" {
		result.Toolchain.PkgConfig = other.Toolchain.PkgConfig
	}
	if len(other.Toolchain.Flags) > 0 {
		result.Toolchain.Flags = other.Toolchain.Flags
	}
	if len(other.Toolchain.ExtraArgs) > 0 {
		result.Toolchain.ExtraArgs = other.Toolchain.ExtraArgs
	}
	if other.Toolchain.BuildTimeout > 0 {
		result.Toolchain.BuildTimeout = other.Toolchain.BuildTimeout
	}

	// Server
	if other.Server.Readiness != "" {
		result.Server.Readiness = other.Server.Readiness
	}
	if other.Server.Delay > 0 {
		result.Server.Delay = other.Server.Delay
	}
	if other.Server.ProbeURL != "" {
		result.Server.ProbeURL = other.Server.ProbeURL
	}
	if other.Server.ProbeTimeout > 0 {
		result.Server.ProbeTimeout = other.Server.ProbeTimeout
	}
	if other.Server.ProbeInterval > 0 {
		result.Server.ProbeInterval = other.Server.ProbeInterval
	}
	if other.Server.StopTimeout > 0 {
		result.Server.StopTimeout = other.Server.StopTimeout
	}
	if other.Server.LogOutput != nil {
		result.Server.LogOutput = other.Server.LogOutput
	}

	// Replay
	if other.Replay.Client != "" {
		result.Replay.Client = other.Replay.Client
	}
	if len(other.Replay.ClientArgs) > 0 {
		result.Replay.ClientArgs = other.Replay.ClientArgs
	}
	if other.Replay.Rate > 0 {
		result.Replay.Rate = other.Replay.Rate
	}
	if other.Replay.RequestTimeout > 0 {
		result.Replay.RequestTimeout = other.Replay.RequestTimeout
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Clean != nil {
		result.Clean = other.Clean
	}

	// Merge environment
	if len(other.Env) > 0 {
		merged := make(map[string]string, len(c.Env)+len(other.Env))
		for k, v := range c.Env {
			merged[k] = v
		}
		for k, v := range other.Env {
			merged[k] = v
		}
		result.Env = merged
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
