package orchestrator

import (
	"log/slog"
	"time"

	"github.com/viant/conductor/progress"
)

const (
	// DefaultPollInterval is the sleep between completion scans
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultWaitLimit is the default cumulative wait budget
	DefaultWaitLimit = 10 * time.Second
)

// Listener is notified about every surfaced result
type Listener[T any] func(result Result[T])

// Option configures an orchestrator
type Option[T any] func(o *Orchestrator[T])

// WithPollInterval sets the sleep between completion scans
func WithPollInterval[T any](interval time.Duration) Option[T] {
	return func(o *Orchestrator[T]) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithWaitLimit sets the cumulative wait budget
func WithWaitLimit[T any](limit time.Duration) Option[T] {
	return func(o *Orchestrator[T]) {
		if limit >= 0 {
			o.waitLimit = limit
		}
	}
}

// WithListener sets a result listener
func WithListener[T any](listener Listener[T]) Option[T] {
	return func(o *Orchestrator[T]) {
		o.listener = listener
	}
}

// WithProgress sets a progress tracker
func WithProgress[T any](tracker *progress.Progress) Option[T] {
	return func(o *Orchestrator[T]) {
		o.progress = tracker
	}
}

// WithLogger sets a logger
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *Orchestrator[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName names the batch in logs and spans
func WithName[T any](name string) Option[T] {
	return func(o *Orchestrator[T]) {
		o.name = name
	}
}
