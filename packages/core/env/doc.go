// Package env handles the extra environment handed to every subprocess
// limetest spawns (pkg-config, the compiler, servers and the HTTP client).
//
// It provides functionality for:
//   - Loading .env files
//   - Expanding ${VAR} references against the loaded values and the process environment
//   - Flattening variable maps into KEY=VALUE pairs for exec
package env
