// Package server runs built test programs as live servers.
//
// A Launcher starts an artifact in its own session so that the program and
// everything it spawns form one process group. Handle.Stop signals that
// whole group and reaps the leader. A Readiness policy decides how long to
// wait between starting a server and sending it requests.
package server
