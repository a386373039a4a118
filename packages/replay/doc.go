// Package replay re-issues the recorded client requests of a test case.
//
// A request script has one client invocation per line, written as the
// arguments to pass to the HTTP client (curl by default). Lines are run
// one at a time in file order and the client's standard output of each is
// captured as that request's response.
package replay
