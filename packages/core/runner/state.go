package runner

import "fmt"

// State is the lifecycle position of a case.
type State int

const (
	Pending State = iota
	Built
	Launched
	Replayed
	Terminated
	Compared
	Passed
	Failed
)

var stateNames = [...]string{
	Pending:    "pending",
	Built:      "built",
	Launched:   "launched",
	Replayed:   "replayed",
	Terminated: "terminated",
	Compared:   "compared",
	Passed:     "passed",
	Failed:     "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is a progress notification. Case is empty for suite-level events
// such as flag resolution.
type Event struct {
	Case    string
	Stage   State
	Message string
}

// Observer receives events in the order they happen.
type Observer func(Event)

// CaseError records which case failed and the stage it was moving to.
type CaseError struct {
	Case  string
	Stage State
	Err   error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("case %s (%s): %v", e.Case, e.Stage, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}
