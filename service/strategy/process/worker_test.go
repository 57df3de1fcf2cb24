package process

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/channel/fs"
	"github.com/viant/conductor/service/channel/memory"
	"github.com/viant/conductor/service/strategy"
)

func TestMain(m *testing.M) {
	if IsWorker() {
		Serve(context.Background(), testActions())
	}
	os.Exit(m.Run())
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	aChannel := memory.New(channel.DefaultConfig())
	var testCases = []struct {
		description string
		request     *Request
		expect      string
	}{
		{description: "value", request: &Request{Action: "square", Args: json.RawMessage(`[9]`)}, expect: `{"value":81}`},
		{description: "action error", request: &Request{Action: "fail"}, expect: `{"error":{"action":"fail","message":"boom"}}`},
		{description: "unknown action", request: &Request{Action: "nope"}, expect: `{"error":{"action":"nope","message":"action nope is not registered"}}`},
	}
	for i, testCase := range testCases {
		workerID := strconv.Itoa(i)
		require.NoError(t, Run(ctx, testActions(), aChannel, testCase.request, workerID), testCase.description)
		data, ok, err := aChannel.FlushMessage(ctx, workerID)
		require.NoError(t, err, testCase.description)
		require.True(t, ok, testCase.description)
		assert.JSONEq(t, testCase.expect, string(data), testCase.description)
	}

	require.NoError(t, Run(ctx, testActions(), aChannel, &Request{Action: "square", Args: json.RawMessage(`{}`)}, "bad"))
	data, ok, err := aChannel.FlushMessage(ctx, "bad")
	require.NoError(t, err)
	require.True(t, ok)
	anEnvelope := &envelope{}
	require.NoError(t, json.Unmarshal(data, anEnvelope))
	require.NotNil(t, anEnvelope.Error)
	assert.Contains(t, anEnvelope.Error.Message, "failed to unmarshal arguments of square")
}

func TestServe(t *testing.T) {
	ctx := context.Background()
	config := channel.Config{URL: t.TempDir()}
	request := &Request{Action: "square", Args: json.RawMessage(`[5]`), Channel: config}
	env, err := request.Environ()
	require.NoError(t, err)
	t.Setenv(EnvRequest, env[len(EnvRequest)+1:])
	require.True(t, IsWorker())

	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()
	assert.Panics(t, func() { Serve(ctx, testActions()) })
	assert.Equal(t, 0, code)

	aChannel, err := fs.New(ctx, afs.New(), config)
	require.NoError(t, err)
	data, ok, err := aChannel.Receive(ctx, strconv.Itoa(os.Getpid()))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":25}`, string(data))

	t.Setenv(EnvRequest, "{")
	assert.Panics(t, func() { Serve(ctx, testActions()) })
	assert.Equal(t, 1, code)
}

func TestExecLauncher(t *testing.T) {
	if testing.Short() {
		t.Skip("re-executes the test binary")
	}
	ctx := context.Background()
	aChannel, err := fs.New(ctx, afs.New(), channel.Config{URL: t.TempDir()})
	require.NoError(t, err)
	s := New[int](NewExecLauncher("-test.run=^$"), aChannel)

	workerID, err := s.Spawn(ctx, square, []any{6})
	require.NoError(t, err)
	assert.NotEqual(t, strconv.Itoa(os.Getpid()), workerID)
	require.Eventually(t, func() bool {
		done, err := s.HasCompleted(ctx, workerID)
		return err == nil && done
	}, 30*time.Second, 10*time.Millisecond)
	value, err := s.FlushResult(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, 36, value)

	blocked, err := s.Spawn(ctx, block, nil)
	require.NoError(t, err)
	require.NoError(t, s.Halt(ctx, blocked))
	require.Eventually(t, func() bool {
		return !s.tracked(blocked)
	}, 30*time.Second, 10*time.Millisecond)
	_, ok, err := aChannel.Receive(ctx, blocked)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.FlushResult(ctx, blocked)
	assert.ErrorIs(t, err, strategy.ErrNoResult)
}
