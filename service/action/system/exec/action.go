package exec

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/conductor/extension"
	"github.com/viant/conductor/model/action"
)

// Name is the registry name of the shell action
const Name = "system/exec"

// Action returns the shell action. Arguments are either command strings or a
// single Input (or its JSON-decoded map form). A non-zero status with
// AbortOnError (the default) fails the task.
func (s *Service) Action() action.Action[*Output] {
	return action.New[*Output](Name, func(ctx context.Context, args ...any) (*Output, error) {
		input, err := inputFrom(args)
		if err != nil {
			return nil, err
		}
		output, err := s.Execute(ctx, input)
		if err != nil {
			return nil, err
		}
		if input.abortOnError() && output.Status != 0 {
			return output, fmt.Errorf("command exited with status %d: %s", output.Status, output.Stderr)
		}
		return output, nil
	})
}

// Register adds the shell action to actions
func (s *Service) Register(actions *extension.Actions) error {
	return extension.Register(actions, s.Action())
}

func inputFrom(args []any) (*Input, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%v: no commands", Name)
	}
	if _, ok := args[0].(string); ok {
		input := &Input{}
		for i := range args {
			command, err := action.Arg[string](args, i)
			if err != nil {
				return nil, err
			}
			input.Commands = append(input.Commands, command)
		}
		return input, nil
	}
	if input, ok := args[0].(*Input); ok {
		return input, nil
	}
	data, err := json.Marshal(args[0])
	if err != nil {
		return nil, fmt.Errorf("%v: invalid input: %w", Name, err)
	}
	input := &Input{}
	if err = json.Unmarshal(data, input); err != nil {
		return nil, fmt.Errorf("%v: invalid input: %w", Name, err)
	}
	return input, nil
}
