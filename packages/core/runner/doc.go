// Package runner drives a limetest suite and tracks every case through its
// lifecycle.
//
// For each case it:
//   - Builds the case program against the resolved library flags
//   - Starts the program as a server in its own process group
//   - Replays the recorded client requests against it
//   - Stops the server and compares captured responses with the answers file
//
// Cases run strictly one after another and the first failure ends the run.
// Progress is reported to an Observer as Events.
package runner
