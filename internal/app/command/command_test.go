package command

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Run(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner()

	result, err := runner.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello; echo oops >&2"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecRunner_RunNonZeroExit(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner()

	result, err := runner.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Contains(t, err.Error(), "broken")
}

func TestExecRunner_RunWorkingDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	result, err := NewExecRunner().Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd"}, Dir: dir})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, dir)
}

func TestExecRunner_RunMissingBinary(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), Command{Name: "definitely-not-a-real-binary-m2t"})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, -1, exitErr.ExitCode)
}

func TestExecRunner_Lines(t *testing.T) {
	requireShell(t)
	var lines []string
	for line, err := range NewExecRunner().Lines(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo a; echo b; echo c"}}) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestExecRunner_LinesExitError(t *testing.T) {
	requireShell(t)
	var lastErr error
	count := 0
	for _, err := range NewExecRunner().Lines(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo a; exit 2"}}) {
		count++
		lastErr = err
	}
	assert.Equal(t, 2, count)
	require.Error(t, lastErr)
	assert.Contains(t, lastErr.Error(), "code 2")
}

func TestExecRunner_LinesEarlyStop(t *testing.T) {
	requireShell(t)
	for line := range NewExecRunner().Lines(context.Background(), Command{Name: "sh", Args: []string{"-c", "while true; do echo tick; done"}}) {
		assert.Equal(t, "tick", line)
		break
	}
}

func TestExecRunner_LinesOverlongLine(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	script := "echo first; head -c 2000000 /dev/zero | tr '\\000' a; echo; echo never"
	var lines []string
	var lastErr error
	start := time.Now()
	for line, err := range NewExecRunner().Lines(ctx, Command{Name: "sh", Args: []string{"-c", script}}) {
		if err != nil {
			lastErr = err
			continue
		}
		lines = append(lines, line)
	}

	assert.Equal(t, []string{"first"}, lines)
	require.Error(t, lastErr)
	assert.True(t, errors.Is(lastErr, bufio.ErrTooLong))
	var exitErr *ExitError
	require.True(t, errors.As(lastErr, &exitErr))
	assert.Equal(t, "sh", exitErr.Command)
	assert.Less(t, time.Since(start), 20*time.Second)
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "zip -r -q a.zip job", Command{Name: "zip", Args: []string{"-r", "-q", "a.zip", "job"}}.String())
}
