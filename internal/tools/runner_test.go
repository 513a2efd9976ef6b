package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.False(t, res.Failed())
}

func TestExecRunnerClassifiesExitCode(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestExecRunnerMissingBinaryIs127(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-binary-seedgate")
	require.Error(t, err)
	assert.Equal(t, 127, res.ExitCode)
}

func TestExecRunnerPassesEnv(t *testing.T) {
	r := ExecRunner{Env: []string{"SEEDGATE_TEST_MARKER=on"}}
	res, err := r.Run(context.Background(), "sh", "-c", "printf %s \"$SEEDGATE_TEST_MARKER\"")
	require.NoError(t, err)
	assert.Equal(t, "on", string(res.Stdout))
}

func TestExecRunnerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, "sh", "-c", "sleep 5")
	require.Error(t, err)
}

func TestRunnerFuncAdapts(t *testing.T) {
	var gotName string
	r := RunnerFunc(func(_ context.Context, name string, args ...string) (Result, error) {
		gotName = name
		return Result{Stdout: []byte("ok")}, nil
	})
	res, err := r.Run(context.Background(), "seedctl", "--prefix", "/tmp/env")
	require.NoError(t, err)
	assert.Equal(t, "seedctl", gotName)
	assert.Equal(t, "ok", string(res.Stdout))
}
