// Package worker runs queued recommendation jobs and records their results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/internal/adapters/mq/queue"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultJobTimeout   = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Item abstracts what workers read off the queue.
type Item = queue.Item

// Recommender produces the ranking for a job.
type Recommender interface {
	Recommend(ctx context.Context, taskText string, topN int) ([]types.Recommendation, error)
}

// JobTracker records job state transitions.
type JobTracker interface {
	Update(id string, fn func(*types.Job)) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Item
}

// Worker processes jobs until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for jobs from an in-process queue.
type InMemoryWorker struct {
	queue       Queue
	recommender Recommender
	jobs        JobTracker
	name        string
	jobTimeout  time.Duration
	busy        *atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, rec Recommender, jobs JobTracker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       q,
		recommender: rec,
		jobs:        jobs,
		name:        "worker", // default name
		jobTimeout:  defaultJobTimeout,
		busy:        &atomic.Int64{},
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case item, ok := <-items:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJob(ctx, item); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("job_id", item.JobID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one job and records its outcome.
func (w *InMemoryWorker) processJob(ctx context.Context, item Item) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.busy.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.jobs.Update(item.JobID, func(j *types.Job) { j.Status = types.JobRunning }); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "job_missing")
		return fmt.Errorf("mark job running: %w", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()
	recs, err := w.recommender.Recommend(jobCtx, item.TaskSkills, item.TopN)
	if err != nil {
		metrics.RecordJobFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "recommend_error")
		metrics.RecordErrorByType("recommend_error", "high")
		if uerr := w.jobs.Update(item.JobID, func(j *types.Job) {
			j.Status = types.JobFailed
			j.Error = err.Error()
		}); uerr != nil {
			return fmt.Errorf("record failure of job %s: %w", item.JobID, uerr)
		}
		return fmt.Errorf("job %s: %w", item.JobID, err)
	}

	if err := w.jobs.Update(item.JobID, func(j *types.Job) {
		j.Status = types.JobDone
		j.Results = recs
	}); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("record result of job %s: %w", item.JobID, err)
	}
	metrics.RecordJobCompleted()
	w.logger.Debug(ctx, "job done",
		logger.String("job_id", item.JobID),
		logger.Int("results", len(recs)),
		logger.Duration("took", time.Since(start)))
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 uses one worker per CPU.
// Options are applied to every worker.
func NewPool(workerCount int, q Queue, rec Recommender, jobs JobTracker, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}

	busy := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)), withBusyCounter(busy))
		pool.workers[i] = NewInMemoryWorker(q, rec, jobs, workerOpts...)
	}
	// Pool logs through the same logger the workers got.
	pool.logger = pool.workers[0].logger

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not stop: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
