package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http", cfg.Library)
	assert.Equal(t, []string{"test1", "test2", "test3", "test4", "test5"}, cfg.Cases)
	assert.Equal(t, "g++", cfg.Toolchain.Compiler)
	assert.Equal(t, "c++23", cfg.Toolchain.Standard)
	assert.Equal(t, "pkg-config", cfg.Toolchain.PkgConfig)
	assert.Equal(t, "delay", cfg.Server.Readiness)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.Delay.Std())
	assert.Equal(t, 5*time.Second, cfg.Server.StopTimeout.Std())
	assert.Equal(t, "curl", cfg.Replay.Client)
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetClean())
	assert.False(t, cfg.Server.GetLogOutput())
}

func TestFindAndLoadConfigWithoutFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	content := `library: http-dev
cases: [test2, test4]
outDir: build
env:
  PORT: "9090"
toolchain:
  compiler: clang++
  extraArgs: ["-O2"]
  buildTimeout: 90s
server:
  readiness: probe
  probeURL: http://localhost:9090/
  stopTimeout: 2s
  logOutput: true
replay:
  clientArgs: ["--max-time", "5"]
  rate: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".limetest.yaml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http-dev", cfg.Library)
	assert.Equal(t, []string{"test2", "test4"}, cfg.Cases)
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, []string{"PORT=9090"}, cfg.Environ())
	assert.Equal(t, "clang++", cfg.Toolchain.Compiler)
	assert.Equal(t, "c++23", cfg.Toolchain.Standard, "unset keys keep defaults")
	assert.Equal(t, []string{"-O2"}, cfg.Toolchain.ExtraArgs)
	assert.Equal(t, 90*time.Second, cfg.Toolchain.BuildTimeout.Std())
	assert.Equal(t, "probe", cfg.Server.Readiness)
	assert.Equal(t, "http://localhost:9090/", cfg.Server.ProbeURL)
	assert.Equal(t, 2*time.Second, cfg.Server.StopTimeout.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Server.Delay.Std())
	assert.True(t, cfg.Server.GetLogOutput())
	assert.Equal(t, "curl", cfg.Replay.Client)
	assert.Equal(t, []string{"--max-time", "5"}, cfg.Replay.ClientArgs)
	assert.Equal(t, 20.0, cfg.Replay.Rate)
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	content := `{"library": "http", "toolchain": {"flags": ["-I/opt/http/include", "-lhttp"]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".limetest.json"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"-I/opt/http/include", "-lhttp"}, cfg.Toolchain.Flags)
}

func TestConfigSearchOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "limetest.yaml"), []byte("library: second\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".limetest.yaml"), []byte("library: first\n"), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Library)
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outDir: out\n"), 0644))

	cfg, err := LoadConfig(path, "/nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutDir)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read config")
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".limetest.yaml"), []byte("server:\n  delay: soon\n"), 0644))

	_, err := FindAndLoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Env = map[string]string{"A": "1", "B": "1"}

	merged := base.Merge(&Config{
		Library: "other",
		Env:     map[string]string{"B": "2"},
		Verbose: BoolPtr(true),
		Server:  ServerConfig{Readiness: "none"},
		Replay:  ReplayConfig{Client: "wget"},
	})

	assert.Equal(t, "other", merged.Library)
	assert.Equal(t, "none", merged.Server.Readiness)
	assert.Equal(t, "wget", merged.Replay.Client)
	assert.True(t, merged.GetVerbose())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Env)
	assert.Equal(t, "g++", merged.Toolchain.Compiler)

	// Base is left untouched
	assert.Equal(t, "http", base.Library)
	assert.Equal(t, "1", base.Env["B"])
	assert.Same(t, base, base.Merge(nil))
}

func TestMergeExplicitFalse(t *testing.T) {
	base := DefaultConfig()
	base.Clean = BoolPtr(true)

	merged := base.Merge(&Config{Clean: BoolPtr(false)})
	assert.False(t, merged.GetClean())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".limetest.yaml")
	cfg := DefaultConfig()
	cfg.Toolchain.BuildTimeout = Duration(time.Minute)

	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
