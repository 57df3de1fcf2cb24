package action

import "errors"

// Error is a task-level failure reported by an action. It is carried with the
// task result and never aborts an orchestrator run.
type Error struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.Action == "" {
		return e.Message
	}
	return e.Action + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap converts err into *Error unless it already is one
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	var actionErr *Error
	if errors.As(err, &actionErr) {
		return err
	}
	return &Error{Action: name, Message: err.Error(), cause: err}
}

// IsError reports whether err carries a task-level action failure
func IsError(err error) bool {
	var actionErr *Error
	return errors.As(err, &actionErr)
}
