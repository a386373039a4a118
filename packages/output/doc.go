// Package output provides formatters for displaying suite results.
//
// Supported output formats:
//   - Console: [INFO]/[ERROR] progress lines for the terminal
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate results before output.
package output
