package exec

import (
	"context"
	osexec "os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conductor/extension"
	"github.com/viant/conductor/model/action"
)

func TestInputFrom(t *testing.T) {
	abort := false
	var testCases = []struct {
		description string
		args        []any
		expect      *Input
		hasError    bool
	}{
		{description: "commands", args: []any{"echo 1", "echo 2"}, expect: &Input{Commands: []string{"echo 1", "echo 2"}}},
		{description: "input", args: []any{&Input{Commands: []string{"ls"}}}, expect: &Input{Commands: []string{"ls"}}},
		{
			description: "decoded input",
			args:        []any{map[string]any{"commands": []any{"pwd"}, "abortOnError": false, "timeoutMs": float64(100)}},
			expect:      &Input{Commands: []string{"pwd"}, AbortOnError: &abort, TimeoutMs: 100},
		},
		{description: "no args", hasError: true},
	}
	for _, testCase := range testCases {
		actual, err := inputFrom(testCase.args)
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestInput_Scoped(t *testing.T) {
	var testCases = []struct {
		description string
		input       *Input
		expect      string
	}{
		{description: "plain", input: &Input{}, expect: "ls"},
		{description: "workdir", input: &Input{Workdir: "/tmp/a b"}, expect: "(cd '/tmp/a b' || exit 1; ls)"},
		{
			description: "env",
			input:       &Input{Env: map[string]string{"B": "it's", "A": "1"}},
			expect:      `(export A='1'; export B='it'\''s'; ls)`,
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.input.scoped("ls"), testCase.description)
	}
}

func TestService_TaskScope(t *testing.T) {
	if _, err := osexec.LookPath("bash"); err != nil {
		t.Skip("bash is not available")
	}
	ctx := context.Background()
	service := New()
	defer service.Close()

	workdir := t.TempDir()
	output, err := service.Execute(ctx, &Input{
		Workdir:  workdir,
		Env:      map[string]string{"CONDUCTOR_GREETING": "hi"},
		Commands: []string{"pwd", "echo $CONDUCTOR_GREETING"},
	})
	require.NoError(t, err)
	require.Len(t, output.Commands, 2)
	assert.Equal(t, workdir, strings.TrimSpace(output.Commands[0].Output))
	assert.Equal(t, "hi", strings.TrimSpace(output.Commands[1].Output))

	output, err = service.Execute(ctx, &Input{Commands: []string{"pwd", `echo "[$CONDUCTOR_GREETING]"`}})
	require.NoError(t, err)
	assert.NotEqual(t, workdir, strings.TrimSpace(output.Commands[0].Output))
	assert.Equal(t, "[]", strings.TrimSpace(output.Commands[1].Output))

	output, err = service.Execute(ctx, &Input{Workdir: workdir + "/missing", Commands: []string{"echo unreachable"}})
	require.NoError(t, err)
	assert.NotEqual(t, 0, output.Status)
}

func TestService_Action(t *testing.T) {
	if _, err := osexec.LookPath("bash"); err != nil {
		t.Skip("bash is not available")
	}
	ctx := context.Background()
	service := New()
	defer service.Close()

	actions := extension.NewActions()
	require.NoError(t, service.Register(actions))
	assert.Equal(t, []string{Name}, actions.Names())

	output, err := action.Call(ctx, service.Action(), []any{"echo hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Status)
	assert.Equal(t, "hello", output.Stdout)

	output, err = action.Call(ctx, service.Action(), []any{"ls /conductor-missing-dir", "echo unreachable"})
	require.Error(t, err)
	assert.True(t, action.IsError(err))
	require.NotNil(t, output)
	assert.Len(t, output.Commands, 1)
	assert.NotEqual(t, 0, output.Status)
}
