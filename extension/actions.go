package extension

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/conductor/model/action"
)

// Handler is a type-erased action used on the worker side
type Handler func(ctx context.Context, args []any) (any, error)

// Actions provides named action handlers
type Actions struct {
	handlers map[string]Handler
	mux      sync.RWMutex
}

// Lookup returns a handler by name
func (s *Actions) Lookup(name string) Handler {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.handlers[name]
}

// Register registers a handler, replacing any previous one with the same name
func (s *Actions) Register(name string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("action name was empty")
	}
	if handler == nil {
		return fmt.Errorf("action %v handler was nil", name)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.handlers[name] = handler
	return nil
}

// Names returns registered action names in sorted order
func (s *Actions) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a typed action to the registry
func Register[T any](actions *Actions, anAction action.Action[T]) error {
	if anAction.Func == nil {
		return fmt.Errorf("action %v has no function", anAction.Name)
	}
	return actions.Register(anAction.Name, func(ctx context.Context, args []any) (any, error) {
		return action.Call(ctx, anAction, args)
	})
}

// NewActions creates a new action registry
func NewActions() *Actions {
	return &Actions{handlers: make(map[string]Handler)}
}
