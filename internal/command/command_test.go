package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	runner := &Runner{}

	result, err := runner.Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "out")
	assert.Contains(t, result.Stderr, "err")
	assert.Equal(t, "out\nerr", result.Output())
}

func TestRun_NonzeroExit(t *testing.T) {
	runner := &Runner{}

	result, err := runner.Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
	})

	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, result.ExitCode)
	assert.Same(t, result, exitErr.Result)
}

func TestRun_ToolNotFound(t *testing.T) {
	runner := &Runner{}

	_, err := runner.Run(context.Background(), Spec{Name: "definitely-not-a-real-tool-xyz"})

	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "definitely-not-a-real-tool-xyz", notFound.Name)
}

func TestRun_ContextCancellation(t *testing.T) {
	runner := &Runner{}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, Spec{
		Name: "sh",
		Args: []string{"-c", "sleep 5"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/root"}

	merged := MergeEnv(base,
		map[string]string{"HOME": "/tmp", "FOO": "1"},
		map[string]string{"FOO": "2"},
	)

	assert.Equal(t, []string{"FOO=2", "HOME=/tmp", "PATH=/bin"}, merged)
}

func TestMergeEnv_NoOverlays(t *testing.T) {
	merged := MergeEnv([]string{"B=2", "A=1"})
	assert.Equal(t, []string{"A=1", "B=2"}, merged)
}
