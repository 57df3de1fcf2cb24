package process

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/viant/conductor/model/action"
	"github.com/viant/conductor/service/channel"
)

// EnvRequest carries the JSON encoded Request of a worker process
const EnvRequest = "CONDUCTOR_WORKER_REQUEST"

// Request describes the work handed to a worker process
type Request struct {
	Action  string          `json:"action"`
	Args    json.RawMessage `json:"args,omitempty"`
	Channel channel.Config  `json:"channel"`
}

// Environ returns the environment entry carrying the request
func (r *Request) Environ() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal worker request: %w", err)
	}
	return EnvRequest + "=" + string(data), nil
}

// Arguments decodes request arguments
func (r *Request) Arguments() ([]any, error) {
	if len(r.Args) == 0 {
		return nil, nil
	}
	var args []any
	if err := json.Unmarshal(r.Args, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments of %v: %w", r.Action, err)
	}
	return args, nil
}

// IsWorker reports whether the current process was launched as a worker
func IsWorker() bool {
	_, ok := os.LookupEnv(EnvRequest)
	return ok
}

func requestFromEnv() (*Request, error) {
	data, ok := os.LookupEnv(EnvRequest)
	if !ok {
		return nil, fmt.Errorf("%v is not set", EnvRequest)
	}
	request := &Request{}
	if err := json.Unmarshal([]byte(data), request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal worker request: %w", err)
	}
	return request, nil
}

// envelope is what a worker publishes on the channel
type envelope struct {
	Value json.RawMessage `json:"value,omitempty"`
	Error *action.Error   `json:"error,omitempty"`
}
