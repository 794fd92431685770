package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strings"
)

// Command is one external tool invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result captures process output and exit status.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError reports a tool that could not start or exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner executes external tools. Implementations must honour ctx
// cancellation by stopping the process.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// LineRunner additionally exposes a tool's stdout as a lazy sequence of
// lines. The final element carries the exit error, if any.
type LineRunner interface {
	Runner
	Lines(ctx context.Context, cmd Command) iter.Seq2[string, error]
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates the production runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes one command and captures stdout, stderr and exit code.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = exitCode(err)
		return result, &ExitError{Command: c.Name, ExitCode: result.ExitCode, Stderr: result.Stderr, Err: err}
	}
	return result, nil
}

// Lines starts the command and yields its stdout line by line. The process
// is killed if the consumer stops early or ctx is cancelled.
func (r *ExecRunner) Lines(ctx context.Context, c Command) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := exec.CommandContext(ctx, c.Name, c.Args...)
		cmd.Dir = c.Dir
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield("", &ExitError{Command: c.Name, ExitCode: -1, Err: err})
			return
		}
		if err := cmd.Start(); err != nil {
			yield("", &ExitError{Command: c.Name, ExitCode: -1, Err: err})
			return
		}

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				cancel()
				_, _ = io.Copy(io.Discard, stdout)
				_ = cmd.Wait()
				return
			}
		}

		if err := scanner.Err(); err != nil {
			cancel()
			_, _ = io.Copy(io.Discard, stdout)
			_ = cmd.Wait()
			yield("", &ExitError{Command: c.Name, ExitCode: -1, Stderr: stderr.String(), Err: fmt.Errorf("read output: %w", err)})
			return
		}

		if err := cmd.Wait(); err != nil {
			yield("", &ExitError{Command: c.Name, ExitCode: exitCode(err), Stderr: stderr.String(), Err: err})
		}
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
