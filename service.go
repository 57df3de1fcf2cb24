package conductor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/conductor/extension"
	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/runtime/orchestrator"
	"github.com/viant/conductor/service/action/system/exec"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/channel/fs"
	"github.com/viant/conductor/service/channel/memory"
	"github.com/viant/conductor/service/strategy"
	"github.com/viant/conductor/service/strategy/inline"
	"github.com/viant/conductor/service/strategy/process"
)

// ErrWorkerProcess is returned when orchestration is attempted from a worker
var ErrWorkerProcess = errors.New("conductor: worker process must call ServeWorker before orchestrating")

// Service holds the resources shared by orchestrators: action registry,
// channel, admission gate and inline sequence
type Service struct {
	config   *Config
	actions  *extension.Actions
	channel  channel.Channel
	gate     process.Gate
	sequence *inline.Sequence
	launcher process.Launcher
	fs       afs.Service
	logger   *slog.Logger
	exec     *exec.Service
	initErr  error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.initErr != nil {
		return s.initErr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.actions == nil {
		s.actions = extension.NewActions()
	}
	if s.sequence == nil {
		s.sequence = inline.NewSequence()
	}
	if s.launcher == nil {
		s.launcher = process.NewExecLauncher()
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	s.exec = exec.New()
	if err := s.exec.Register(s.actions); err != nil {
		return err
	}
	if s.channel == nil {
		if err := s.ensureChannel(); err != nil {
			return err
		}
	}
	if s.gate == nil {
		switch s.config.Process.Admission {
		case AdmissionChannel:
			s.gate = process.NewCounterGate(s.channel, s.config.Process.MaxWorkers, 0)
		default:
			s.gate = process.NewSemaphoreGate(s.config.Process.MaxWorkers)
		}
	}
	return nil
}

func (s *Service) ensureChannel() error {
	if s.config.Strategy != StrategyProcess {
		s.channel = memory.New(s.config.Channel)
		return nil
	}
	aChannel, err := fs.New(context.Background(), s.fs, s.config.Channel)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	s.channel = aChannel
	return nil
}

// Config returns the service configuration
func (s *Service) Config() *Config {
	return s.config
}

// Actions returns the action registry
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Channel returns the channel shared with workers
func (s *Service) Channel() channel.Channel {
	return s.channel
}

// Gate returns the admission gate shared by process strategies
func (s *Service) Gate() process.Gate {
	return s.gate
}

// Sequence returns the inline worker id sequence
func (s *Service) Sequence() *inline.Sequence {
	return s.sequence
}

// ServeWorker runs the worker request and exits when the current process is a
// worker; otherwise it returns immediately
func (s *Service) ServeWorker(ctx context.Context) {
	if process.IsWorker() {
		process.Serve(ctx, s.actions)
	}
}

// Close releases shell sessions
func (s *Service) Close() error {
	return s.exec.Close()
}

// Register adds a named action to the service registry
func Register[T any](s *Service, anAction action.Action[T]) error {
	return extension.Register(s.actions, anAction)
}

// Strategy returns the configured strategy for result type T
func Strategy[T any](s *Service) (strategy.Strategy[T], error) {
	switch s.config.Strategy {
	case StrategyInline:
		return inline.New[T](s.sequence), nil
	case StrategyProcess:
		if process.IsWorker() {
			return nil, ErrWorkerProcess
		}
		return process.New[T](s.launcher, s.channel, process.WithGate(s.gate), process.WithLogger(s.logger)), nil
	}
	return nil, fmt.Errorf("unsupported strategy: %q", s.config.Strategy)
}

// NewOrchestrator creates an orchestrator over the configured strategy;
// options override the configured defaults
func NewOrchestrator[T any](s *Service, options ...orchestrator.Option[T]) (*orchestrator.Orchestrator[T], error) {
	aStrategy, err := Strategy[T](s)
	if err != nil {
		return nil, err
	}
	opts := []orchestrator.Option[T]{
		orchestrator.WithPollInterval[T](s.config.Orchestrator.PollInterval),
		orchestrator.WithWaitLimit[T](s.config.Orchestrator.WaitLimit),
		orchestrator.WithLogger[T](s.logger),
	}
	return orchestrator.New[T](aStrategy, append(opts, options...)...), nil
}

// New creates a service with the default configuration
func New(options ...Option) (*Service, error) {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a service from config
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
