// Package action defines the unit of work executed by a worker: a typed
// function plus the name under which worker processes can find it.
package action

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/viant/structology/conv"
)

// Func is the callable unit of work; args are passed in registration order.
type Func[T any] func(ctx context.Context, args ...any) (T, error)

// Action couples a Func with the name a worker process uses to look it up.
// Unnamed actions can only run inline.
type Action[T any] struct {
	Name string
	Func Func[T]
}

// New creates a named action
func New[T any](name string, fn Func[T]) Action[T] {
	return Action[T]{Name: name, Func: fn}
}

// Anonymous creates an action without a name
func Anonymous[T any](fn Func[T]) Action[T] {
	return Action[T]{Func: fn}
}

// Call runs the action, converting a returned error or a panic into *Error.
func Call[T any](ctx context.Context, anAction Action[T], args []any) (result T, err error) {
	if anAction.Func == nil {
		return result, &Error{Action: anAction.Name, Message: "action has no function"}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Action: anAction.Name, Message: fmt.Sprintf("panic: %v\n%s", r, debug.Stack())}
		}
	}()
	result, err = anAction.Func(ctx, args...)
	if err != nil {
		return result, Wrap(anAction.Name, err)
	}
	return result, nil
}

var (
	converterOnce sync.Once
	converter     *conv.Converter
)

func argConverter() *conv.Converter {
	converterOnce.Do(func() {
		options := conv.DefaultOptions()
		options.IgnoreUnmapped = true
		converter = conv.NewConverter(options)
	})
	return converter
}

// Arg returns args[index] as T. Values that crossed a process boundary arrive
// JSON-decoded (float64, map[string]interface{}), so they are converted.
func Arg[T any](args []any, index int) (T, error) {
	var out T
	if index < 0 || index >= len(args) {
		return out, fmt.Errorf("argument %d out of range, got %d arguments", index, len(args))
	}
	value := args[index]
	if typed, ok := value.(T); ok {
		return typed, nil
	}
	if value == nil {
		return out, nil
	}
	if err := argConverter().Convert(value, &out); err != nil {
		return out, fmt.Errorf("failed to convert argument %d (%T) to %T: %w", index, value, out, err)
	}
	return out, nil
}
