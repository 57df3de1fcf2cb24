package conductor

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/conductor/extension"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/strategy/inline"
	"github.com/viant/conductor/service/strategy/process"
	"github.com/viant/conductor/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithActions sets the action registry
func WithActions(actions *extension.Actions) Option {
	return func(s *Service) {
		s.actions = actions
	}
}

// WithChannel sets the channel shared with worker processes
func WithChannel(aChannel channel.Channel) Option {
	return func(s *Service) {
		s.channel = aChannel
	}
}

// WithGate sets the admission gate
func WithGate(gate process.Gate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// WithLauncher sets the worker launcher
func WithLauncher(launcher process.Launcher) Option {
	return func(s *Service) {
		s.launcher = launcher
	}
}

// WithSequence sets the inline worker id sequence
func WithSequence(sequence *inline.Sequence) Option {
	return func(s *Service) {
		s.sequence = sequence
	}
}

// WithFS sets the storage service used by the channel
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty traces go to stdout. The first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErr = err
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErr = err
		}
	}
}
