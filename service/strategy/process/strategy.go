package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/strategy"
)

// completionBuffer bounds completion notifications not yet consumed
const completionBuffer = 64

// Strategy runs every action in its own worker process
type Strategy[T any] struct {
	launcher  Launcher
	channel   channel.Channel
	gate      Gate
	logger    *slog.Logger
	mu        sync.Mutex
	workers   map[string]*worker
	completed chan string
}

type worker struct {
	process  Process
	done     chan struct{}
	err      error
	released bool
	halted   bool
}

// exitCoder matches wait errors caused by a non-zero exit status
type exitCoder interface {
	ExitCode() int
}

// Spawn admits and launches a worker for a named action
func (s *Strategy[T]) Spawn(ctx context.Context, anAction action.Action[T], args []any) (string, error) {
	if anAction.Name == "" {
		return "", fmt.Errorf("%w: action must be registered by name to run in a worker process", strategy.ErrSpawnFailure)
	}
	request := &Request{Action: anAction.Name}
	if configured, ok := s.channel.(interface{ Config() channel.Config }); ok {
		request.Channel = configured.Config()
	}
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("%w: failed to marshal %v arguments: %v", strategy.ErrSpawnFailure, anAction.Name, err)
		}
		request.Args = data
	}
	if err := s.gate.Acquire(ctx); err != nil {
		return "", err
	}
	aProcess, err := s.launcher.Launch(ctx, request)
	if err != nil {
		s.release(ctx)
		return "", fmt.Errorf("%w: %v", strategy.ErrSpawnFailure, err)
	}
	workerID := strconv.Itoa(aProcess.Pid())
	aWorker := &worker{process: aProcess, done: make(chan struct{})}
	s.mu.Lock()
	s.workers[workerID] = aWorker
	s.mu.Unlock()
	go s.watch(workerID, aWorker)
	return workerID, nil
}

func (s *Strategy[T]) watch(workerID string, aWorker *worker) {
	err := aWorker.process.Wait()
	s.mu.Lock()
	aWorker.err = err
	release := !aWorker.released
	aWorker.released = true
	halted := aWorker.halted
	if halted {
		delete(s.workers, workerID)
	}
	close(aWorker.done)
	s.mu.Unlock()
	if release {
		s.release(context.Background())
	}
	if halted {
		if err := s.discard(context.Background(), workerID); err != nil {
			s.logger.Warn("failed to discard halted worker result", "worker", workerID, "error", err)
		}
		return
	}
	s.notify(workerID)
}

// notify queues a completion, dropping the oldest one when the feed is full
func (s *Strategy[T]) notify(workerID string) {
	for {
		select {
		case s.completed <- workerID:
			return
		default:
		}
		select {
		case <-s.completed:
		default:
		}
	}
}

func (s *Strategy[T]) release(ctx context.Context) {
	if err := s.gate.Release(ctx); err != nil {
		s.logger.Warn("failed to release worker slot", "error", err)
	}
}

func (s *Strategy[T]) discard(ctx context.Context, workerID string) error {
	if err := s.channel.Delete(ctx, workerID); err != nil {
		return fmt.Errorf("failed to discard worker %v result: %w", workerID, err)
	}
	return nil
}

// Halt releases the worker slot and kills the process. A halted worker is
// forgotten once it exits and any result it published is discarded.
func (s *Strategy[T]) Halt(ctx context.Context, workerID string) error {
	s.mu.Lock()
	aWorker, ok := s.workers[workerID]
	if !ok || aWorker.halted {
		s.mu.Unlock()
		return nil
	}
	aWorker.halted = true
	release := !aWorker.released
	aWorker.released = true
	exited := false
	select {
	case <-aWorker.done:
		exited = true
		delete(s.workers, workerID)
	default:
	}
	s.mu.Unlock()
	if release {
		s.release(ctx)
	}
	if exited {
		return s.discard(ctx, workerID)
	}
	if err := aWorker.process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("%w: failed to halt worker %v: %v", strategy.ErrFail, workerID, err)
	}
	return nil
}

// LatestCompleted returns a worker that has exited since the last call
func (s *Strategy[T]) LatestCompleted(ctx context.Context) (string, bool, error) {
	for {
		select {
		case workerID := <-s.completed:
			if s.tracked(workerID) {
				return workerID, true, nil
			}
		case <-ctx.Done():
			return "", false, ctx.Err()
		default:
			return "", false, nil
		}
	}
}

func (s *Strategy[T]) tracked(workerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.workers[workerID]
	return ok
}

// HasCompleted reports whether the worker process has exited; halted workers
// that have exited are unknown
func (s *Strategy[T]) HasCompleted(_ context.Context, workerID string) (bool, error) {
	s.mu.Lock()
	aWorker, ok := s.workers[workerID]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: unknown worker %v", strategy.ErrFail, workerID)
	}
	select {
	case <-aWorker.done:
	default:
		return false, nil
	}
	s.mu.Lock()
	err, halted := aWorker.err, aWorker.halted
	s.mu.Unlock()
	if err == nil || halted {
		return true, nil
	}
	var exitErr exitCoder
	if errors.As(err, &exitErr) {
		return true, nil
	}
	return false, fmt.Errorf("%w: worker %v: %v", strategy.ErrFail, workerID, err)
}

// FlushResult takes the worker envelope from the channel and forgets the worker
func (s *Strategy[T]) FlushResult(ctx context.Context, workerID string) (T, error) {
	var result T
	data, ok, err := s.channel.FlushMessage(ctx, workerID)
	s.mu.Lock()
	var exitErr error
	if aWorker, found := s.workers[workerID]; found {
		exitErr = aWorker.err
		delete(s.workers, workerID)
	}
	s.mu.Unlock()
	if err != nil {
		return result, fmt.Errorf("failed to flush worker %v result: %w", workerID, err)
	}
	if !ok {
		if exitErr != nil {
			return result, &action.Error{Message: fmt.Sprintf("worker %v exited without result: %v", workerID, exitErr)}
		}
		return result, fmt.Errorf("%w: worker %v", strategy.ErrNoResult, workerID)
	}
	anEnvelope := &envelope{}
	if err = json.Unmarshal(data, anEnvelope); err != nil {
		return result, fmt.Errorf("failed to unmarshal worker %v result: %w", workerID, err)
	}
	if anEnvelope.Error != nil {
		return result, anEnvelope.Error
	}
	if len(anEnvelope.Value) > 0 {
		if err = json.Unmarshal(anEnvelope.Value, &result); err != nil {
			return result, fmt.Errorf("failed to decode worker %v result: %w", workerID, err)
		}
	}
	return result, nil
}

// MaxWorkers returns the admission limit
func (s *Strategy[T]) MaxWorkers() int {
	return s.gate.Limit()
}

// Active returns the number of admitted workers
func (s *Strategy[T]) Active(ctx context.Context) (int, error) {
	return s.gate.Active(ctx)
}

// Option configures a Strategy
type Option func(o *options)

type options struct {
	gate   Gate
	logger *slog.Logger
}

// WithGate shares an admission gate between strategies
func WithGate(gate Gate) Option {
	return func(o *options) {
		o.gate = gate
	}
}

// WithLogger sets a logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a process strategy; without WithGate it admits up to Ceiling workers
func New[T any](launcher Launcher, aChannel channel.Channel, opts ...Option) *Strategy[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.gate == nil {
		o.gate = NewSemaphoreGate(Ceiling)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Strategy[T]{
		launcher:  launcher,
		channel:   aChannel,
		gate:      o.gate,
		logger:    o.logger,
		workers:   make(map[string]*worker),
		completed: make(chan string, completionBuffer),
	}
}

var _ strategy.Strategy[int] = (*Strategy[int])(nil)
