package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/viant/afs"
	"github.com/viant/conductor/extension"
	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/channel/fs"
)

// exit terminates the worker; replaced in tests
var exit = os.Exit

// Serve runs the worker request found in the environment and terminates the
// process. It never returns.
func Serve(ctx context.Context, actions *extension.Actions) {
	code := 0
	if err := serve(ctx, actions); err != nil {
		slog.Error("worker failed", "pid", os.Getpid(), "error", err)
		code = 1
	}
	exit(code)
	panic("process: worker survived self-termination")
}

func serve(ctx context.Context, actions *extension.Actions) error {
	request, err := requestFromEnv()
	if err != nil {
		return err
	}
	aChannel, err := fs.New(ctx, afs.New(), request.Channel)
	if err != nil {
		return err
	}
	return Run(ctx, actions, aChannel, request, strconv.Itoa(os.Getpid()))
}

// Run executes the requested action and publishes its outcome under workerID.
// Action failures are published as results; only infrastructure errors are
// returned.
func Run(ctx context.Context, actions *extension.Actions, aChannel channel.Channel, request *Request, workerID string) error {
	anEnvelope := &envelope{}
	if value, err := execute(ctx, actions, request); err != nil {
		anEnvelope.Error = asActionError(request.Action, err)
	} else if anEnvelope.Value, err = json.Marshal(value); err != nil {
		anEnvelope.Error = asActionError(request.Action, fmt.Errorf("failed to marshal result: %w", err))
	}
	data, err := json.Marshal(anEnvelope)
	if err != nil {
		return fmt.Errorf("failed to marshal worker %v result: %w", workerID, err)
	}
	if err = aChannel.Send(ctx, workerID, data, 0); err != nil {
		return fmt.Errorf("failed to publish worker %v result: %w", workerID, err)
	}
	return nil
}

func execute(ctx context.Context, actions *extension.Actions, request *Request) (any, error) {
	handler := actions.Lookup(request.Action)
	if handler == nil {
		return nil, fmt.Errorf("action %v is not registered", request.Action)
	}
	args, err := request.Arguments()
	if err != nil {
		return nil, err
	}
	return handler(ctx, args)
}

func asActionError(name string, err error) *action.Error {
	var actionErr *action.Error
	if errors.As(action.Wrap(name, err), &actionErr) {
		return actionErr
	}
	return &action.Error{Action: name, Message: err.Error()}
}
