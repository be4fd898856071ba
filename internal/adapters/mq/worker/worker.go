// Package worker executes matched gesture actions off the recognition loop.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/touchgest/internal/adapters/mq/queue"
	"github.com/okian/touchgest/pkg/logger"
	"github.com/okian/touchgest/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 1
	poolShutdownTimeout = 30 * time.Second
	// abortGrace bounds the wait for workers whose command was cancelled.
	abortGrace = 2 * time.Second
)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker executes jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in progress.
	Shutdown(ctx context.Context) error
}

// Counters tracks job outcomes. It is shared by the workers of a pool.
type Counters struct {
	executed atomic.Int64
	failed   atomic.Int64
}

// Executed returns the number of successful jobs.
func (c *Counters) Executed() int64 { return c.executed.Load() }

// Failed returns the number of failed jobs.
func (c *Counters) Failed() int64 { return c.failed.Load() }

// InMemoryWorker executes jobs read from a queue.
type InMemoryWorker struct {
	queue    Queue
	executor Executor
	counters *Counters
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	abort        chan struct{}
	abortOnce    sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, executor Executor, counters *Counters, opts ...Option) *InMemoryWorker {
	if counters == nil {
		counters = &Counters{}
	}
	w := &InMemoryWorker{
		queue:    q,
		executor: executor,
		counters: counters,
		name:     "worker",
		shutdown: make(chan struct{}),
		abort:    make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// jobCtx is cancelled when the pool aborts a command in progress.
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	go func() {
		select {
		case <-w.abort:
			cancelJobs()
		case <-jobCtx.Done():
		}
	}()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(jobCtx, job)
		}
	}
}

// Shutdown stops the worker after the job in progress.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	err := w.executor.Execute(ctx, job.Command)
	elapsed := time.Since(start)
	metrics.RecordActionLatency(float64(elapsed.Milliseconds()))

	if err != nil {
		w.counters.failed.Add(1)
		metrics.RecordActionFailed()
		metrics.RecordErrorByComponent("worker", "action_failed")
		w.logger.Error(ctx, "action failed",
			logger.String("worker", w.name),
			logger.String("job_id", job.ID),
			logger.String("gesture", job.Gesture.String()),
			logger.String("command", job.Command),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return
	}

	w.counters.executed.Add(1)
	metrics.RecordActionExecuted()
	w.logger.Debug(ctx, "action done",
		logger.String("worker", w.name),
		logger.String("job_id", job.ID),
		logger.String("command", job.Command),
		logger.Duration("elapsed", elapsed))
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters

	logger logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, q Queue, executor Executor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, executor, p.counters, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Counters returns the job outcome counters of the pool.
func (p *Pool) Counters() *Counters { return p.counters }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. When ctx
// expires first the commands in progress are cancelled and Shutdown waits a
// short grace period for the workers to exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
		}
		if timedOut {
			break
		}
	}
	if !timedOut {
		return nil
	}

	p.logger.Warn(ctx, "workers did not drain the queue in time; cancelling running commands")
	for _, w := range p.workers {
		w.shutdownOnce.Do(func() { close(w.shutdown) })
		w.abortOnce.Do(func() { close(w.abort) })
	}

	graceCtx, graceCancel := context.WithTimeout(context.WithoutCancel(ctx), abortGrace)
	defer graceCancel()
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-graceCtx.Done():
			p.logger.Error(ctx, "worker did not stop", logger.String("worker", w.name))
		}
	}
	return fmt.Errorf("pool shutdown: %w", shutdownCtx.Err())
}
