// Package replay feeds touch event scripts through the gesture pipeline
// without a touchscreen.
package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/touchgest/internal/adapters/device"
	"github.com/okian/touchgest/internal/adapters/mq/queue"
	"github.com/okian/touchgest/internal/adapters/mq/worker"
	"github.com/okian/touchgest/internal/adapters/repository"
	service "github.com/okian/touchgest/internal/app"
	"github.com/okian/touchgest/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	scriptPermission    = 0o644
)

// execQueueSize bounds pending commands when replaying with Exec.
const execQueueSize = 256

// Run replays cfg.ScriptPath and writes one line per recognized gesture to
// out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (Summary, error) {
	summary := Summary{StartTime: time.Now()}

	script, err := device.LoadScript(cfg.ScriptPath)
	if err != nil {
		return summary, fmt.Errorf("load script: %w", err)
	}
	summary.Batches = script.Len()

	logger.Get().Info(ctx, "starting replay",
		logger.String("script", cfg.ScriptPath),
		logger.Int("batches", script.Len()),
		logger.String("rules", cfg.RulesPath),
		logger.String("bounds", cfg.BoundsPath),
		logger.Bool("exec", cfg.Exec))

	opts := []service.Option{
		service.WithDeviceName(cfg.ScriptPath),
		service.WithMinEdgeDistance(cfg.MinEdgeDistance),
		service.WithCalibrationSamples(cfg.CalibrationSamples),
		service.WithGestureHandler(func(_ context.Context, r service.Recognition) {
			printRecognition(out, r)
		}),
	}

	var pool *worker.Pool
	if cfg.Exec {
		q := queue.NewInMemoryQueue(queue.WithCapacity(execQueueSize))
		executor := worker.NewShellExecutor(worker.WithShell(cfg.Shell), worker.WithTimeout(cfg.Timeout))
		pool = worker.NewPool(1, q, executor)
		// workers drain the queue after ctx is cancelled
		pool.Start(context.WithoutCancel(ctx))
		opts = append(opts, service.WithActionQueue(q), service.WithPool(pool))
	}

	store := repository.NewFileStore(cfg.RulesPath, cfg.BoundsPath)
	svc := service.New(script, store, opts...)
	runErr := svc.Run(ctx)

	if pool != nil {
		if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Get().Warn(ctx, "executor pool did not drain", logger.Error(err))
		}
	}
	_ = script.Close()

	st := svc.GetStats()
	summary.Gestures = st.Gestures
	summary.Matched = st.Matched
	summary.Executed = st.ActionsExecuted
	summary.Failed = st.ActionsFailed
	summary.Dropped = st.ActionsDropped
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)

	if runErr != nil {
		return summary, fmt.Errorf("replay: %w", runErr)
	}
	return summary, nil
}

func printRecognition(out io.Writer, r service.Recognition) {
	if r.Matched {
		_, _ = fmt.Fprintf(out, "%-20s %5dms  -> %s\n", r.Gesture, r.Duration, r.Command)
		return
	}
	_, _ = fmt.Fprintf(out, "%-20s %5dms  (no rule)\n", r.Gesture, r.Duration)
}

// PrintSummary writes the final replay statistics to out.
func PrintSummary(out io.Writer, s Summary) {
	_, _ = fmt.Fprintf(out, "\n%d batches, %d gestures, %d matched", s.Batches, s.Gestures, s.Matched)
	if s.Executed+s.Failed+s.Dropped > 0 {
		_, _ = fmt.Fprintf(out, ", %d executed, %d failed, %d dropped", s.Executed, s.Failed, s.Dropped)
	}
	_, _ = fmt.Fprintf(out, " in %s\n", s.Duration.Round(time.Millisecond))
}

// Generate writes a demo script for the bounds stored at boundsPath to
// outputPath.
func Generate(ctx context.Context, boundsPath, outputPath string) error {
	b, err := repository.NewFileStore("", boundsPath).LoadBounds(ctx)
	if err != nil {
		return fmt.Errorf("load bounds: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, scriptPermission)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	batches, want := Demo(b)
	if err := WriteScript(file, batches); err != nil {
		return err
	}

	logger.Get().Info(ctx, "demo script written",
		logger.String("filename", outputPath),
		logger.Int("batches", len(batches)),
		logger.Int("gestures", len(want)))
	return nil
}
