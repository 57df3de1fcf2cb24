package conductor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/conductor"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/conductor/config.yaml"
	content := `strategy: inline
orchestrator:
  pollInterval: 20ms
  waitLimit: 2s
process:
  maxWorkers: 4
  admission: channel
channel:
  url: mem://localhost/conductor/channel
  ttl: 30s
`
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(content)))
	config, err := conductor.LoadConfig(ctx, fs, URL)
	require.NoError(t, err)
	assert.Equal(t, conductor.StrategyInline, config.Strategy)
	assert.Equal(t, 20*time.Millisecond, config.Orchestrator.PollInterval)
	assert.Equal(t, 2*time.Second, config.Orchestrator.WaitLimit)
	assert.Equal(t, 4, config.Process.MaxWorkers)
	assert.Equal(t, conductor.AdmissionChannel, config.Process.Admission)
	assert.Equal(t, "mem://localhost/conductor/channel", config.Channel.URL)
	assert.Equal(t, "thread", config.Channel.Prefix)
	assert.Equal(t, 30*time.Second, config.Channel.TTL)

	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader("strategy: fork\n")))
	_, err = conductor.LoadConfig(ctx, fs, URL)
	assert.Error(t, err)

	_, err = conductor.LoadConfig(ctx, fs, "mem://localhost/conductor/missing.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		mutate      func(c *conductor.Config)
		hasError    bool
	}{
		{description: "default", mutate: func(c *conductor.Config) {}},
		{description: "unknown strategy", mutate: func(c *conductor.Config) { c.Strategy = "thread" }, hasError: true},
		{description: "zero poll", mutate: func(c *conductor.Config) { c.Orchestrator.PollInterval = 0 }, hasError: true},
		{description: "negative limit", mutate: func(c *conductor.Config) { c.Orchestrator.WaitLimit = -time.Second }, hasError: true},
		{description: "unknown admission", mutate: func(c *conductor.Config) { c.Process.Admission = "lock" }, hasError: true},
		{description: "process without url", mutate: func(c *conductor.Config) { c.Channel.URL = "" }, hasError: true},
		{description: "inline without url", mutate: func(c *conductor.Config) { c.Strategy = conductor.StrategyInline; c.Channel.URL = "" }},
		{description: "negative ttl", mutate: func(c *conductor.Config) { c.Channel.TTL = -time.Second }, hasError: true},
	}
	for _, testCase := range testCases {
		config := conductor.DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}
