package testutil

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"media2text/internal/app/command"
)

// CommandHandler emulates one external tool.
type CommandHandler func(ctx context.Context, cmd command.Command) (command.Result, error)

// FakeRunner implements command.LineRunner by dispatching on the binary
// name. Commands without a handler fail with exit code 127.
type FakeRunner struct {
	mu       sync.Mutex
	handlers map[string]CommandHandler
	lines    map[string][]string
	calls    []command.Command
}

// NewFakeRunner creates an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		handlers: make(map[string]CommandHandler),
		lines:    make(map[string][]string),
	}
}

// Handle registers the emulation for binary.
func (f *FakeRunner) Handle(binary string, h CommandHandler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[binary] = h
	return f
}

// EmitLines makes Lines yield these stdout lines for binary before the
// handler's result is reported.
func (f *FakeRunner) EmitLines(binary string, lines ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[binary] = lines
	return f
}

// Run implements command.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd command.Command) (command.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	h, ok := f.handlers[cmd.Name]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return command.Result{ExitCode: -1}, &command.ExitError{Command: cmd.Name, ExitCode: -1, Err: err}
	}
	if !ok {
		return command.Result{ExitCode: 127}, &command.ExitError{
			Command:  cmd.Name,
			ExitCode: 127,
			Err:      fmt.Errorf("%s: command not found", cmd.Name),
		}
	}
	return h(ctx, cmd)
}

// Lines implements command.LineRunner.
func (f *FakeRunner) Lines(ctx context.Context, cmd command.Command) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.mu.Lock()
		lines := f.lines[cmd.Name]
		f.mu.Unlock()

		for _, line := range lines {
			if !yield(line, nil) {
				return
			}
		}
		if _, err := f.Run(ctx, cmd); err != nil {
			yield("", err)
		}
	}
}

// Calls returns a copy of every command seen so far.
func (f *FakeRunner) Calls() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the commands run for binary.
func (f *FakeRunner) CallsTo(binary string) []command.Command {
	var out []command.Command
	for _, c := range f.Calls() {
		if c.Name == binary {
			out = append(out, c)
		}
	}
	return out
}

// Fail returns a handler that exits with code and stderr.
func Fail(code int, stderr string) CommandHandler {
	return func(ctx context.Context, cmd command.Command) (command.Result, error) {
		return command.Result{ExitCode: code, Stderr: stderr}, &command.ExitError{
			Command:  cmd.Name,
			ExitCode: code,
			Stderr:   stderr,
			Err:      fmt.Errorf("exit status %d", code),
		}
	}
}

// ArgAfter returns the argument following flag, or "" if absent.
func ArgAfter(cmd command.Command, flag string) string {
	for i, a := range cmd.Args {
		if a == flag && i+1 < len(cmd.Args) {
			return cmd.Args[i+1]
		}
	}
	return ""
}

// HasArg reports whether cmd carries the literal argument.
func HasArg(cmd command.Command, arg string) bool {
	for _, a := range cmd.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// LastArg returns the final argument.
func LastArg(cmd command.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	return cmd.Args[len(cmd.Args)-1]
}

// Joined renders args for assertion messages.
func Joined(cmd command.Command) string {
	return strings.Join(cmd.Args, " ")
}
