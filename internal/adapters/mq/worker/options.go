package worker

import (
	"time"

	"github.com/okian/touchgest/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// ExecutorOption applies a configuration option to the ShellExecutor.
type ExecutorOption func(*ShellExecutor)

// WithShell sets the shell used as `<shell> -c <command>`.
func WithShell(shell string) ExecutorOption {
	return func(e *ShellExecutor) {
		if shell != "" {
			e.shell = shell
		}
	}
}

// WithTimeout bounds the run time of a single command.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *ShellExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}
