package replay

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/touchgest/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging sends logs to stderr, and to logFile as well when it is set,
// so that stdout only carries replay results.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	if err := logger.Init(logger.WithWriter(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`touchgest replay
================

Feeds a recorded or generated touch event script through the gesture
pipeline and prints every recognized gesture with the command it maps to.

Usage:
  replay -script events.yaml [options]
  replay -generate demo.yaml -bounds dims

Options:
  -script string
        YAML event script to replay
  -rules string
        Gesture rule file (default "/etc/touchgest/gestures.conf")
  -bounds string
        Calibration file (default "/var/lib/touchgest/dims")
  -exec
        Run matched commands instead of only printing them
  -shell string
        Shell used to run commands with -exec (default "/bin/sh")
  -timeout duration
        Per-command timeout with -exec (default 10s)
  -min-edge float
        Minimum travel of a border swipe (default 10)
  -samples int
        Swipes per edge if the script has to calibrate (default 5)
  -generate string
        Write a demo script covering every gesture for -bounds and exit
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Script format:
  batches:
    - - {kind: down, slot: 0, x: 995, y: 300, time: 0}
    - - {kind: motion, slot: 0, x: 850, y: 305, time: 50}
    - - {kind: up, slot: 0, time: 60}
`)
}
