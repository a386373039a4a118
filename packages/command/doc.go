// Package command runs external tools for limetest.
//
// Every subprocess the suite needs to wait for (pkg-config, the compiler,
// the HTTP client) goes through a Runner, so the orchestration logic can be
// exercised with fake runners instead of real binaries.
package command
