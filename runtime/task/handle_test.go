package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conductor/model/action"
	state "github.com/viant/conductor/model/task"
	"github.com/viant/conductor/service/strategy"
	"github.com/viant/conductor/service/strategy/inline"
)

type stubStrategy struct {
	spawnErr    error
	done        bool
	probeErr    error
	halts       int
	flushes     int
	lastArgs    []any
	lastWorker  string
	lastHaltsID string
}

func (s *stubStrategy) Spawn(_ context.Context, _ action.Action[int], args []any) (string, error) {
	if s.spawnErr != nil {
		return "", s.spawnErr
	}
	s.lastArgs = args
	return "w1", nil
}

func (s *stubStrategy) Halt(_ context.Context, workerID string) error {
	s.halts++
	s.lastHaltsID = workerID
	return nil
}

func (s *stubStrategy) LatestCompleted(context.Context) (string, bool, error) {
	return "", false, nil
}

func (s *stubStrategy) HasCompleted(_ context.Context, workerID string) (bool, error) {
	s.lastWorker = workerID
	return s.done, s.probeErr
}

func (s *stubStrategy) FlushResult(context.Context, string) (int, error) {
	s.flushes++
	return 42, nil
}

var noop = action.New[int]("noop", func(ctx context.Context, args ...any) (int, error) { return 0, nil })

func TestHandle_Lifecycle(t *testing.T) {
	ctx := context.Background()
	stub := &stubStrategy{}
	handle := New[int]("a", noop, stub)
	assert.Equal(t, "a", handle.Key())
	assert.Equal(t, state.StatusNotStarted, handle.Status())
	assert.False(t, handle.Started())

	done, err := handle.Probe(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, stub.lastWorker)

	require.NoError(t, handle.Launch(ctx, []any{1, "x"}))
	assert.Equal(t, []any{1, "x"}, stub.lastArgs)
	assert.Equal(t, "w1", handle.WorkerID())
	assert.True(t, handle.Started())
	assert.ErrorIs(t, handle.Launch(ctx, nil), ErrAlreadyStarted)

	_, err = handle.Collect(ctx)
	assert.ErrorIs(t, err, ErrNotFinished)

	done, err = handle.Probe(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "w1", stub.lastWorker)

	stub.done = true
	done, err = handle.Probe(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, handle.Completed())
	assert.False(t, handle.Halted())
	assert.Equal(t, state.StatusFinished, handle.Status())

	value, err := handle.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	_, err = handle.Collect(ctx)
	assert.ErrorIs(t, err, ErrAlreadyCollected)
	assert.Equal(t, 1, stub.flushes)

	require.NoError(t, handle.Halt(ctx))
	assert.Equal(t, 0, stub.halts)
	assert.Equal(t, state.StatusFinished, handle.Status())
}

func TestHandle_AdmissionRefused(t *testing.T) {
	ctx := context.Background()
	stub := &stubStrategy{spawnErr: strategy.ErrAdmissionRefused}
	handle := New[int]("a", noop, stub)
	err := handle.Launch(ctx, nil)
	assert.ErrorIs(t, err, strategy.ErrAdmissionRefused)
	assert.Equal(t, state.StatusNotStarted, handle.Status())

	stub.spawnErr = nil
	require.NoError(t, handle.Launch(ctx, nil))
	assert.Equal(t, state.StatusExecuting, handle.Status())
}

func TestHandle_Halt(t *testing.T) {
	ctx := context.Background()
	stub := &stubStrategy{}
	handle := New[int]("a", noop, stub)
	require.NoError(t, handle.Halt(ctx))
	assert.Equal(t, 0, stub.halts)

	require.NoError(t, handle.Launch(ctx, nil))
	require.NoError(t, handle.Halt(ctx))
	require.NoError(t, handle.Halt(ctx))
	assert.Equal(t, 1, stub.halts)
	assert.Equal(t, "w1", stub.lastHaltsID)
	assert.True(t, handle.Halted())
	assert.True(t, handle.Completed())

	stub.done = true
	done, err := handle.Probe(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, state.StatusHalted, handle.Status())
	_, err = handle.Collect(ctx)
	assert.ErrorIs(t, err, ErrNotFinished)
}

func TestHandle_StatusNeverMovesBack(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		finish      func(handle *Handle[int], stub *stubStrategy)
		expected    state.Status
	}{
		{
			description: "finished",
			finish: func(handle *Handle[int], stub *stubStrategy) {
				stub.done = true
				_, _ = handle.Probe(ctx)
			},
			expected: state.StatusFinished,
		},
		{
			description: "halted",
			finish: func(handle *Handle[int], stub *stubStrategy) {
				_ = handle.Halt(ctx)
			},
			expected: state.StatusHalted,
		},
	}
	for _, testCase := range testCases {
		stub := &stubStrategy{}
		handle := New[int]("a", noop, stub)
		require.NoError(t, handle.Launch(ctx, nil), testCase.description)
		testCase.finish(handle, stub)
		assert.ErrorIs(t, handle.Launch(ctx, nil), ErrAlreadyStarted, testCase.description)
		require.NoError(t, handle.Halt(ctx), testCase.description)
		assert.Equal(t, testCase.expected, handle.Status(), testCase.description)
	}
}

func TestHandle_ProbeFailure(t *testing.T) {
	ctx := context.Background()
	stub := &stubStrategy{probeErr: strategy.ErrFail}
	handle := New[int]("a", noop, stub)
	require.NoError(t, handle.Launch(ctx, nil))
	_, err := handle.Probe(ctx)
	assert.ErrorIs(t, err, strategy.ErrFail)
	assert.Equal(t, state.StatusExecuting, handle.Status())
}

func TestHandle_Inline(t *testing.T) {
	ctx := context.Background()
	failing := action.New[int]("failing", func(ctx context.Context, args ...any) (int, error) {
		return 0, errors.New("failed")
	})
	handle := New[int]("f", failing, inline.New[int](nil))
	require.NoError(t, handle.Launch(ctx, nil))
	done, err := handle.Probe(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	_, err = handle.Collect(ctx)
	assert.True(t, action.IsError(err))
}
