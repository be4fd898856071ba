package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/touchgest/internal/config"
	"github.com/okian/touchgest/internal/replay"
)

// Default configuration constants.
const (
	defaultTimeout       = 10 * time.Second
	defaultReplayTimeout = 10 * time.Minute
)

func main() {
	defaults := config.New()
	var (
		scriptPath = flag.String("script", "", "YAML event script to replay")
		rulesPath  = flag.String("rules", defaults.RulesPath, "Gesture rule file")
		boundsPath = flag.String("bounds", defaults.CalibrationPath, "Calibration file")
		execute    = flag.Bool("exec", false, "Run matched commands instead of only printing them")
		shell      = flag.String("shell", defaults.Shell, "Shell used to run commands with -exec")
		timeout    = flag.Duration("timeout", defaultTimeout, "Per-command timeout with -exec")
		minEdge    = flag.Float64("min-edge", defaults.MinEdgeDistance, "Minimum travel of a border swipe")
		samples    = flag.Int("samples", defaults.CalibrationSamples, "Swipes per edge if the script has to calibrate")
		generate   = flag.String("generate", "", "Write a demo script covering every gesture for -bounds and exit")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || (*scriptPath == "" && *generate == "") {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &replay.Config{
		ScriptPath:         *scriptPath,
		RulesPath:          *rulesPath,
		BoundsPath:         *boundsPath,
		Exec:               *execute,
		Shell:              *shell,
		Timeout:            *timeout,
		MinEdgeDistance:    *minEdge,
		CalibrationSamples: *samples,
	}
	if err := run(cfg, *generate); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(cfg *replay.Config, generate string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultReplayTimeout)
	defer cancel()

	if generate != "" {
		if err := replay.Generate(ctx, cfg.BoundsPath, generate); err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}
		return nil
	}

	summary, err := replay.Run(ctx, cfg, os.Stdout)
	replay.PrintSummary(os.Stdout, summary)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	return nil
}
