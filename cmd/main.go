package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/touchgest/internal/adapters/device"
	"github.com/okian/touchgest/internal/adapters/http/api"
	"github.com/okian/touchgest/internal/adapters/mq/queue"
	"github.com/okian/touchgest/internal/adapters/mq/worker"
	"github.com/okian/touchgest/internal/adapters/repository"
	service "github.com/okian/touchgest/internal/app"
	"github.com/okian/touchgest/internal/config"
	"github.com/okian/touchgest/pkg/logger"
	"github.com/okian/touchgest/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "touchgest stopped with error", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, err := openDevice(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn(context.Background(), "failed to close device", logger.Error(err))
		}
	}()

	// Action execution runs on its own context so queued commands can
	// finish after a shutdown signal.
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.ActionQueueSize))
	executor := worker.NewShellExecutor(
		worker.WithShell(cfg.Shell),
		worker.WithTimeout(cfg.ActionTimeout()),
	)
	pool := worker.NewPool(cfg.ActionWorkers, q, executor)
	pool.Start(context.WithoutCancel(ctx))

	store := repository.NewFileStore(cfg.RulesPath, cfg.CalibrationPath)
	svc := service.New(src, store,
		service.WithLogger(log.Named("service")),
		service.WithDeviceName(src.Path()),
		service.WithActionQueue(q),
		service.WithPool(pool),
		service.WithMinEdgeDistance(cfg.MinEdgeDistance),
		service.WithCalibrationSamples(cfg.CalibrationSamples),
	)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	if cfg.Addr != "" {
		go serveStatus(ctx, cfg.Addr, svc)
	}

	runErr := svc.Run(ctx)

	log.Info(ctx, "draining action queue", logger.Int("pending", q.Len(ctx)))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "action workers did not stop cleanly", logger.Error(err))
	}

	log.Info(ctx, "touchgest stopped")
	return runErr
}

// openDevice opens the configured touchscreen, discovering one when no
// device is configured.
func openDevice(ctx context.Context, cfg *config.Config) (*device.Evdev, error) {
	path := cfg.Device
	if path == "" {
		found, err := device.Discover(ctx)
		if err != nil {
			return nil, err
		}
		logger.Get().Info(ctx, "touch device found", logger.String("device", found))
		path = found
	}
	return device.Open(path, device.WithGrab(cfg.Grab))
}

// serveStatus runs the status HTTP server until ctx is cancelled.
func serveStatus(ctx context.Context, addr string, svc *service.Service) {
	log := logger.Get()

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info(ctx, "starting status server", logger.String("addr", addr))
	if err := api.ListenAndServe(ctx, srv); err != nil {
		log.Error(ctx, "status server stopped", logger.Error(err))
		return
	}
	log.Info(ctx, "status server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
