package exec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

const defaultTimeout = time.Minute

// Service runs task commands through gosh shells, one per host. Tasks share a
// host shell one at a time; every command runs in a subshell scoped to its
// task working directory and environment.
type Service struct {
	shells map[string]*shell
	mux    sync.Mutex
}

type shell struct {
	mux     sync.Mutex
	service *gosh.Service
}

// New creates a new Service instance
func New() *Service {
	return &Service{shells: make(map[string]*shell)}
}

// Execute runs input commands in order and stops at the first failure when
// AbortOnError is set
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	input.Init()
	aShell, err := s.shell(ctx, input.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to open shell on %v: %w", input.Host.URL, err)
	}
	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	abortOnError := input.abortOnError()

	aShell.mux.Lock()
	defer aShell.mux.Unlock()
	output := &Output{}
	var stdout, stderr []string
	for _, line := range input.Commands {
		command := aShell.run(ctx, input.scoped(line), timeout)
		command.Input = line
		output.Commands = append(output.Commands, command)
		output.Status = command.Status
		if command.Output != "" {
			stdout = append(stdout, command.Output)
		}
		if command.Stderr != "" {
			stderr = append(stderr, command.Stderr)
		}
		if abortOnError && command.Status != 0 {
			break
		}
	}
	output.Stdout = strings.TrimSpace(strings.Join(stdout, "\n"))
	output.Stderr = strings.TrimSpace(strings.Join(stderr, "\n"))
	return output, nil
}

// run executes one command; a failure without exit status is reported as -1
func (s *shell) run(ctx context.Context, command string, timeout time.Duration) *Command {
	started := time.Now()
	stdout, status, err := s.service.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > timeout && err == nil {
		err = fmt.Errorf("timed out after %s", elapsed)
	}
	if status == 0 && err == nil {
		return &Command{Output: stdout}
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	if status == 0 {
		status = -1
	}
	return &Command{Stderr: stdout, Status: status}
}

func (s *Service) shell(ctx context.Context, host *Host) (*shell, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if aShell, ok := s.shells[host.URL]; ok {
		return aShell, nil
	}
	target := url.Host(host.URL)
	var service *gosh.Service
	var err error
	if target == "localhost" {
		service, err = gosh.New(ctx, local.New())
	} else {
		var config *ssh.ClientConfig
		if config, err = sshConfig(ctx, host); err != nil {
			return nil, err
		}
		if !strings.Contains(target, ":") {
			target += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(target, config))
	}
	if err != nil {
		return nil, err
	}
	aShell := &shell{service: service}
	s.shells[host.URL] = aShell
	return aShell, nil
}

// sshConfig resolves host credentials through scy secrets
func sshConfig(ctx context.Context, host *Host) (*ssh.ClientConfig, error) {
	credentials := host.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	generic, err := secret.New().GetCredentials(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v credentials: %w", credentials, err)
	}
	return generic.SSH.Config(ctx)
}

// Close releases every host shell
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []error
	for hostURL, aShell := range s.shells {
		if err := aShell.service.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close shell on %v: %w", hostURL, err))
		}
	}
	s.shells = make(map[string]*shell)
	return errors.Join(errs...)
}
