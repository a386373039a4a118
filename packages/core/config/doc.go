// Package config handles configuration loading and management for limetest.
//
// It provides functionality for:
//   - Loading configuration from .limetest.yaml (or JSON) in the suite root
//   - Default configuration values
//   - Merging command-line overrides on top of the file
package config
