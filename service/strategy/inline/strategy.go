// Package inline implements a synchronous strategy: the action runs in the
// caller during Spawn and is complete before Spawn returns. Results therefore
// surface in submission order and timeouts never trigger.
package inline

import (
	"context"
	"fmt"

	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/service/strategy"
)

// Strategy runs actions inline
type Strategy[T any] struct {
	sequence *Sequence
}

// Spawn executes the action and stores its result under a new id
func (s *Strategy[T]) Spawn(ctx context.Context, anAction action.Action[T], args []any) (string, error) {
	id := s.sequence.next()
	value, err := action.Call(ctx, anAction, args)
	s.sequence.store(id, value, err)
	return id, nil
}

// Halt is a no-op, nothing is ever running
func (s *Strategy[T]) Halt(context.Context, string) error {
	return nil
}

// LatestCompleted returns the last spawned id
func (s *Strategy[T]) LatestCompleted(context.Context) (string, bool, error) {
	id := s.sequence.Last()
	return id, id != "", nil
}

// HasCompleted always returns true
func (s *Strategy[T]) HasCompleted(context.Context, string) (bool, error) {
	return true, nil
}

// FlushResult returns and forgets a stored result
func (s *Strategy[T]) FlushResult(_ context.Context, workerID string) (T, error) {
	var result T
	anOutcome, ok := s.sequence.take(workerID)
	if !ok {
		return result, fmt.Errorf("%w: worker %v", strategy.ErrNoResult, workerID)
	}
	if anOutcome.value != nil {
		typed, ok := anOutcome.value.(T)
		if !ok {
			return result, fmt.Errorf("worker %v result type %T, expected %T", workerID, anOutcome.value, result)
		}
		result = typed
	}
	return result, anOutcome.err
}

// Sequence returns the id sequence
func (s *Strategy[T]) Sequence() *Sequence {
	return s.sequence
}

// New creates an inline strategy; a nil sequence gets a private one
func New[T any](sequence *Sequence) *Strategy[T] {
	if sequence == nil {
		sequence = NewSequence()
	}
	return &Strategy[T]{sequence: sequence}
}

var _ strategy.Strategy[any] = (*Strategy[any])(nil)
