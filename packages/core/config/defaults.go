package config

import "time"

// DefaultLibrary is the pkg-config name of the library under test
const DefaultLibrary = "http"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Library: DefaultLibrary,
		Cases:   []string{"test1", "test2", "test3", "test4", "test5"},
		Toolchain: ToolchainConfig{
			Compiler:  "g++",
			Standard:  "c++23",
			PkgConfig: "pkg-config",
		},
		Server: ServerConfig{
			Readiness:     "delay",
			Delay:         Duration(500 * time.Millisecond),
			ProbeTimeout:  Duration(10 * time.Second),
			ProbeInterval: Duration(50 * time.Millisecond),
			StopTimeout:   Duration(5 * time.Second),
		},
		Replay: ReplayConfig{
			Client: "curl",
		},
	}
}
