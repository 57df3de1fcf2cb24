package conductor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/afs"
	"github.com/viant/conductor/runtime/orchestrator"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/strategy/process"
	"gopkg.in/yaml.v3"
)

const (
	// StrategyInline runs actions synchronously in the caller
	StrategyInline = "inline"
	// StrategyProcess runs every action in its own worker process
	StrategyProcess = "process"

	// AdmissionSemaphore admits workers through an in-process semaphore
	AdmissionSemaphore = "semaphore"
	// AdmissionChannel keeps the worker count on the channel
	AdmissionChannel = "channel"
)

// Config is a serialisable representation of the service configuration. The
// zero-value of nested fields falls back to package defaults.
type Config struct {
	Strategy     string             `json:"strategy" yaml:"strategy"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Process      ProcessConfig      `json:"process" yaml:"process"`
	Channel      channel.Config     `json:"channel" yaml:"channel"`
}

// OrchestratorConfig controls how often an orchestrator polls for finished
// tasks and how long it waits in total before halting the run
type OrchestratorConfig struct {
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
	WaitLimit    time.Duration `json:"waitLimit" yaml:"waitLimit"`
}

// ProcessConfig controls worker process admission
type ProcessConfig struct {
	MaxWorkers int    `json:"maxWorkers" yaml:"maxWorkers"` // capped at process.Ceiling, <= 0 means the ceiling
	Admission  string `json:"admission" yaml:"admission"`   // AdmissionSemaphore or AdmissionChannel
}

// DefaultConfig returns a Config populated with the package defaults
func DefaultConfig() *Config {
	aChannel := channel.DefaultConfig()
	aChannel.URL = filepath.Join(os.TempDir(), "conductor", "channel")
	return &Config{
		Strategy: StrategyProcess,
		Orchestrator: OrchestratorConfig{
			PollInterval: orchestrator.DefaultPollInterval,
			WaitLimit:    orchestrator.DefaultWaitLimit,
		},
		Process: ProcessConfig{
			MaxWorkers: process.Ceiling,
			Admission:  AdmissionSemaphore,
		},
		Channel: aChannel,
	}
}

// Validate returns an error describing the first invalid setting or nil
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Strategy {
	case StrategyInline, StrategyProcess:
	default:
		return fmt.Errorf("unsupported strategy: %q", c.Strategy)
	}
	if c.Orchestrator.PollInterval <= 0 {
		return fmt.Errorf("orchestrator.pollInterval must be > 0")
	}
	if c.Orchestrator.WaitLimit < 0 {
		return fmt.Errorf("orchestrator.waitLimit must be >= 0")
	}
	switch c.Process.Admission {
	case "", AdmissionSemaphore, AdmissionChannel:
	default:
		return fmt.Errorf("unsupported process.admission: %q", c.Process.Admission)
	}
	if c.Strategy == StrategyProcess && c.Channel.URL == "" {
		return fmt.Errorf("channel.url is required by the %v strategy", StrategyProcess)
	}
	return c.Channel.Validate()
}

// LoadConfig reads a YAML config from URL, applying defaults for omitted settings
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
