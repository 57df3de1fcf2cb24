package orchestrator

import "errors"

var (
	// ErrTimeout is returned when the cumulative wait budget is exhausted;
	// remaining tasks are halted and their results lost
	ErrTimeout = errors.New("orchestrator: wait time limit exceeded")

	// ErrTaskActive is returned when registering over a task that is executing
	ErrTaskActive = errors.New("orchestrator: task is active")
)
