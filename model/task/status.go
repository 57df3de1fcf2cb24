// Package task defines the lifecycle states of a unit of work handled by an
// orchestrator.
package task

// Status represents the current state of a task
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusExecuting  Status = "executing"
	StatusFinished   Status = "finished"
	StatusHalted     Status = "halted"
)

// transitions lists every allowed move; executing -> notStarted is the
// admission-refused revert.
var transitions = map[Status][]Status{
	StatusNotStarted: {StatusExecuting},
	StatusExecuting:  {StatusNotStarted, StatusFinished, StatusHalted},
}

// IsTerminal returns true for finished or halted
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusHalted
}

// CanTransition reports whether s may move to next
func (s Status) CanTransition(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
