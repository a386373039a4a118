// Package cmd implements the limetest CLI commands using Cobra.
//
// Available commands:
//   - run (also the root command): build, serve, replay and compare test cases
//   - validate: Check case fixtures without building anything
//   - list: Show the default and discovered cases
//   - init: Scaffold a new case directory
//   - flags: Print the build flags pkg-config reports for the library
//   - version: Show limetest version information
//
// Every run flag has a LIMETEST_* environment default and overrides the
// .limetest.yaml config file found in the suite directory.
package cmd
