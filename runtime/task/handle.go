// Package task provides the handle wrapping one registered unit of work and
// its lifecycle. A handle delegates launch, probing and termination to its
// strategy; it is owned by a single orchestrator and is not safe for
// concurrent use.
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/conductor/model/action"
	state "github.com/viant/conductor/model/task"
	"github.com/viant/conductor/service/strategy"
)

var (
	// ErrAlreadyStarted is returned when launching a handle twice
	ErrAlreadyStarted = errors.New("task: already started")
	// ErrAlreadyCollected is returned when collecting a result twice
	ErrAlreadyCollected = errors.New("task: result already collected")
	// ErrNotFinished is returned when collecting a result of an unfinished task
	ErrNotFinished = errors.New("task: not finished")
)

// Handle tracks one task through NotStarted, Executing, Finished or Halted
type Handle[T any] struct {
	key       string
	action    action.Action[T]
	strategy  strategy.Strategy[T]
	status    state.Status
	workerID  string
	collected bool
}

// Key returns the registration key
func (h *Handle[T]) Key() string {
	return h.key
}

// Action returns the wrapped action
func (h *Handle[T]) Action() action.Action[T] {
	return h.action
}

// Status returns the current status
func (h *Handle[T]) Status() state.Status {
	return h.status
}

// WorkerID returns the id assigned by the strategy at launch
func (h *Handle[T]) WorkerID() string {
	return h.workerID
}

// Launch asks the strategy to spawn the action. Admission refusal reverts the
// handle to NotStarted and is returned unchanged so the caller can retry later.
func (h *Handle[T]) Launch(ctx context.Context, args []any) error {
	if !h.moveTo(state.StatusExecuting) {
		return fmt.Errorf("%w: %v is %v", ErrAlreadyStarted, h.key, h.status)
	}
	workerID, err := h.strategy.Spawn(ctx, h.action, args)
	if err != nil {
		h.moveTo(state.StatusNotStarted)
		return err
	}
	h.workerID = workerID
	return nil
}

// Probe checks the worker for completion and returns whether the task is done
func (h *Handle[T]) Probe(ctx context.Context) (bool, error) {
	if h.status != state.StatusExecuting {
		return h.status.IsTerminal(), nil
	}
	done, err := h.strategy.HasCompleted(ctx, h.workerID)
	if err != nil {
		return false, err
	}
	if done {
		h.moveTo(state.StatusFinished)
	}
	return done, nil
}

// Collect flushes the task result; it can be called once per finished task
func (h *Handle[T]) Collect(ctx context.Context) (T, error) {
	var result T
	if h.collected {
		return result, fmt.Errorf("%w: %v", ErrAlreadyCollected, h.key)
	}
	if h.status != state.StatusFinished {
		return result, fmt.Errorf("%w: %v is %v", ErrNotFinished, h.key, h.status)
	}
	h.collected = true
	return h.strategy.FlushResult(ctx, h.workerID)
}

// Halt terminates an executing task; other states are left unchanged
func (h *Handle[T]) Halt(ctx context.Context) error {
	if !h.moveTo(state.StatusHalted) {
		return nil
	}
	return h.strategy.Halt(ctx, h.workerID)
}

// moveTo applies an allowed status transition and reports whether it happened
func (h *Handle[T]) moveTo(next state.Status) bool {
	if !h.status.CanTransition(next) {
		return false
	}
	h.status = next
	return true
}

// Started reports whether the task left NotStarted
func (h *Handle[T]) Started() bool {
	return h.status != state.StatusNotStarted
}

// Completed reports whether the task finished or was halted
func (h *Handle[T]) Completed() bool {
	return h.status.IsTerminal()
}

// Halted reports whether the task was halted
func (h *Handle[T]) Halted() bool {
	return h.status == state.StatusHalted
}

// New creates a handle in NotStarted
func New[T any](key string, anAction action.Action[T], aStrategy strategy.Strategy[T]) *Handle[T] {
	return &Handle[T]{key: key, action: anAction, strategy: aStrategy, status: state.StatusNotStarted}
}
