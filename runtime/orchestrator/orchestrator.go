package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/conductor/internal/clock"
	"github.com/viant/conductor/internal/idgen"
	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/progress"
	"github.com/viant/conductor/runtime/task"
	"github.com/viant/conductor/service/strategy"
	"github.com/viant/conductor/tracing"
)

// Result is a surfaced task outcome. Err carries a task-level action failure
// (*action.Error); it does not end the run.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// outcome of a completion scan
type outcome int

const (
	outcomePending outcome = iota
	outcomeFound
	outcomeExhausted
)

// Orchestrator owns registered tasks and drives them through a strategy. It is
// single-threaded from the caller's viewpoint.
type Orchestrator[T any] struct {
	name         string
	strategy     strategy.Strategy[T]
	pollInterval time.Duration
	waitLimit    time.Duration
	listener     Listener[T]
	progress     *progress.Progress
	logger       *slog.Logger

	order     []string
	tasks     map[string]*task.Handle[T]
	args      map[string][]any
	active    []string
	collected []Result[T]
	waits     int

	runID string
	span  *tracing.Span
}

// Register adds a task or replaces the one registered under key; a replaced
// task keeps its registration position. Finished tasks run again only once
// registered again.
func (o *Orchestrator[T]) Register(key string, anAction action.Action[T], args ...any) error {
	if prev, ok := o.tasks[key]; ok {
		if o.isActive(key) {
			return fmt.Errorf("%w: %v", ErrTaskActive, key)
		}
		if prev.Started() {
			o.progress.Update(progress.Delta{Pending: 1})
		}
	} else {
		o.order = append(o.order, key)
		o.progress.Update(progress.Delta{Total: 1, Pending: 1})
	}
	o.tasks[key] = task.New(key, anAction, o.strategy)
	o.args[key] = args
	return nil
}

// Start launches as many pending tasks as the strategy admits
func (o *Orchestrator[T]) Start(ctx context.Context) error {
	o.begin(ctx)
	if err := o.admitPending(ctx); err != nil {
		return o.fail(ctx, err)
	}
	return nil
}

// Stop halts every active task and discards collected results. Halt errors
// are returned for diagnostics; the remaining tasks are still halted.
func (o *Orchestrator[T]) Stop(ctx context.Context) error {
	err := o.cleanup(ctx)
	o.end(nil)
	return err
}

// Reset discards active bookkeeping and moves the cursor to the first result
func (o *Orchestrator[T]) Reset(ctx context.Context) error {
	if err := o.cleanup(ctx); err != nil {
		o.logger.Warn("failed to halt task", "orchestrator", o.name, "error", err)
	}
	o.begin(ctx)
	return o.Next(ctx)
}

// Next moves the cursor to the next completed task. At the end of the
// sequence Valid reports false and Next returns nil.
func (o *Orchestrator[T]) Next(ctx context.Context) error {
	o.begin(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, err)
		}
		if err := o.admitPending(ctx); err != nil {
			return o.fail(ctx, err)
		}
		found, err := o.scan(ctx)
		if err != nil {
			return o.fail(ctx, err)
		}
		switch found {
		case outcomeFound:
			return nil
		case outcomeExhausted:
			err = o.cleanup(ctx)
			o.end(nil)
			if err != nil {
				o.logger.Warn("failed to halt task", "orchestrator", o.name, "error", err)
			}
			return nil
		}
		if err = o.wait(ctx); err != nil {
			return o.fail(ctx, err)
		}
	}
}

// Valid reports whether the cursor holds a result
func (o *Orchestrator[T]) Valid() bool {
	return len(o.collected) > 0
}

// Current returns the most recently collected result
func (o *Orchestrator[T]) Current() Result[T] {
	if len(o.collected) == 0 {
		return Result[T]{}
	}
	return o.collected[len(o.collected)-1]
}

// Key returns the key of the current result
func (o *Orchestrator[T]) Key() string {
	return o.Current().Key
}

// Value returns the value of the current result
func (o *Orchestrator[T]) Value() T {
	return o.Current().Value
}

// Collect runs the whole sequence and returns every result surfaced before
// the end or the first error
func (o *Orchestrator[T]) Collect(ctx context.Context) ([]Result[T], error) {
	var results []Result[T]
	err := o.Reset(ctx)
	for err == nil && o.Valid() {
		results = append(results, o.Current())
		err = o.Next(ctx)
	}
	return results, err
}

// ActionCount returns the number of registered tasks
func (o *Orchestrator[T]) ActionCount() int {
	return len(o.tasks)
}

// Waits returns the number of poll intervals slept so far
func (o *Orchestrator[T]) Waits() int {
	return o.waits
}

// admitPending launches not started tasks in registration order until the
// strategy refuses admission
func (o *Orchestrator[T]) admitPending(ctx context.Context) error {
	runCtx := o.runContext(ctx)
	for _, key := range o.order {
		handle := o.tasks[key]
		if handle.Started() {
			continue
		}
		err := handle.Launch(runCtx, o.args[key])
		if errors.Is(err, strategy.ErrAdmissionRefused) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to launch %v: %w", key, err)
		}
		o.active = append(o.active, key)
		o.progress.Update(progress.Delta{Pending: -1, Running: 1})
	}
	return nil
}

// scan probes active tasks in admission order and collects the first finished one
func (o *Orchestrator[T]) scan(ctx context.Context) (outcome, error) {
	if len(o.active) == 0 {
		if o.hasPending() {
			return outcomePending, nil
		}
		return outcomeExhausted, nil
	}
	for i, key := range o.active {
		handle := o.tasks[key]
		done, err := handle.Probe(ctx)
		if err != nil {
			return outcomePending, fmt.Errorf("failed to probe %v: %w", key, err)
		}
		if !done {
			continue
		}
		o.active = append(o.active[:i], o.active[i+1:]...)
		value, err := handle.Collect(ctx)
		if err != nil && !action.IsError(err) {
			return outcomePending, fmt.Errorf("failed to collect %v: %w", key, err)
		}
		o.surface(Result[T]{Key: key, Value: value, Err: err})
		return outcomeFound, nil
	}
	return outcomePending, nil
}

func (o *Orchestrator[T]) surface(result Result[T]) {
	o.collected = append(o.collected, result)
	if result.Err != nil {
		o.progress.Update(progress.Delta{Running: -1, Failed: 1})
	} else {
		o.progress.Update(progress.Delta{Running: -1, Completed: 1})
	}
	if o.span != nil {
		o.span.AddEvent("task.completed", map[string]string{"key": result.Key})
	}
	if o.listener != nil {
		o.listener(result)
	}
}

// wait sleeps one poll interval unless the wait budget is already spent
func (o *Orchestrator[T]) wait(ctx context.Context) error {
	waited := time.Duration(o.waits) * o.pollInterval
	if waited >= o.waitLimit {
		o.logger.Warn("wait time limit exceeded", "orchestrator", o.name, "waited", waited, "active", len(o.active))
		return fmt.Errorf("%w: waited %v, %d tasks active", ErrTimeout, waited, len(o.active))
	}
	if err := clock.Sleep(ctx, o.pollInterval); err != nil {
		return err
	}
	o.waits++
	return nil
}

// fail halts everything and returns err
func (o *Orchestrator[T]) fail(ctx context.Context, err error) error {
	if hErr := o.cleanup(context.WithoutCancel(ctx)); hErr != nil {
		o.logger.Warn("failed to halt task", "orchestrator", o.name, "error", hErr)
	}
	o.end(err)
	return err
}

// cleanup halts active tasks and clears collected results
func (o *Orchestrator[T]) cleanup(ctx context.Context) error {
	var errs []error
	for _, key := range o.active {
		if err := o.tasks[key].Halt(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to halt %v: %w", key, err))
		}
		o.progress.Update(progress.Delta{Running: -1, Halted: 1})
	}
	o.active = nil
	o.collected = nil
	return errors.Join(errs...)
}

func (o *Orchestrator[T]) isActive(key string) bool {
	for _, candidate := range o.active {
		if candidate == key {
			return true
		}
	}
	return false
}

func (o *Orchestrator[T]) hasPending() bool {
	for _, key := range o.order {
		if !o.tasks[key].Started() {
			return true
		}
	}
	return false
}

// begin opens the run span once per run
func (o *Orchestrator[T]) begin(ctx context.Context) {
	if o.span != nil {
		return
	}
	o.runID = idgen.New()
	o.progress.Start(o.runID, o.name)
	_, o.span = tracing.StartSpan(ctx, "orchestrator.run", "INTERNAL")
	o.span.WithAttributes(map[string]string{"run.id": o.runID, "orchestrator.name": o.name}).
		WithCount("task.count", len(o.tasks))
}

func (o *Orchestrator[T]) end(err error) {
	if o.span == nil {
		return
	}
	o.span.WithCount("wait.count", o.waits)
	tracing.EndSpan(o.span, err)
	o.span = nil
}

// runContext carries the run span to actions
func (o *Orchestrator[T]) runContext(ctx context.Context) context.Context {
	return tracing.WithSpan(ctx, o.span)
}

// New creates an orchestrator over the strategy
func New[T any](aStrategy strategy.Strategy[T], opts ...Option[T]) *Orchestrator[T] {
	ret := &Orchestrator[T]{
		name:         "conductor",
		strategy:     aStrategy,
		pollInterval: DefaultPollInterval,
		waitLimit:    DefaultWaitLimit,
		logger:       slog.Default(),
		tasks:        make(map[string]*task.Handle[T]),
		args:         make(map[string][]any),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
