package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a handle to a launched worker
type Process interface {
	Pid() int
	// Wait blocks until the process exits
	Wait() error
	// Kill terminates the process immediately
	Kill() error
}

// Launcher starts worker processes
type Launcher interface {
	Launch(ctx context.Context, request *Request) (Process, error)
}

// ExecLauncher re-executes a binary (the current one by default) in worker mode
type ExecLauncher struct {
	Path   string
	Args   []string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Launch starts the worker; the process is not bound to ctx, it lives until it
// exits or is killed
func (l *ExecLauncher) Launch(_ context.Context, request *Request) (Process, error) {
	path := l.Path
	if path == "" {
		executable, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		path = executable
	}
	env, err := request.Environ()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, l.Args...)
	cmd.Env = append(append(os.Environ(), l.Env...), env)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker %v: %w", path, err)
	}
	return &execProcess{cmd: cmd}, nil
}

// NewExecLauncher creates a launcher for the current binary
func NewExecLauncher(args ...string) *ExecLauncher {
	return &ExecLauncher{Args: args}
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
