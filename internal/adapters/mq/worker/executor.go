package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Default executor configuration.
const (
	defaultShell      = "/bin/sh"
	defaultTimeout    = 10 * time.Second
	waitDelay         = time.Second
	maxReportedOutput = 512
)

// Executor runs an action command.
type Executor interface {
	Execute(ctx context.Context, command string) error
}

// CommandError reports a command that ran and failed.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q: %v: %s", e.Command, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ShellExecutor runs commands through a shell.
type ShellExecutor struct {
	shell   string
	timeout time.Duration
}

// NewShellExecutor creates an executor that runs `/bin/sh -c <command>`.
func NewShellExecutor(opts ...ExecutorOption) *ShellExecutor {
	e := &ShellExecutor{
		shell:   defaultShell,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the per-command timeout.
func (e *ShellExecutor) Timeout() time.Duration { return e.timeout }

// Execute runs command and waits for it to exit.
func (e *ShellExecutor) Execute(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.shell, "-c", command) //nolint:gosec // running configured commands is the point
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %q", ErrTimeout, e.timeout, command)
	}
	if err != nil {
		return &CommandError{Command: command, Output: trimOutput(out.String()), Err: err}
	}
	return nil
}

func trimOutput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxReportedOutput {
		s = s[:maxReportedOutput] + "..."
	}
	return s
}
