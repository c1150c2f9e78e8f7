// Package service wires the profile snapshot, model bundle, ranker and job
// pipeline behind the operations the HTTP API and AMQP intake need.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	amqpintake "github.com/okian/skillmatch/internal/adapters/mq/amqp"
	jobqueue "github.com/okian/skillmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillmatch/internal/adapters/mq/worker"
	"github.com/okian/skillmatch/internal/adapters/modelstore"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultTopN         = 10
	defaultMaxTopN      = 1000
	defaultQueueSize    = 1000
	defaultJobRetention = 10000
	defaultJobTimeout   = 30 * time.Second
	defaultAMQPQueue    = "recommendation_jobs"
)

// Service implements the API dependencies for the recommendation engine.
type Service struct {
	mu sync.RWMutex

	// Sources
	loader repository.Loader
	models modelstore.Source

	// Core components
	snapshot *repository.Snapshot
	bundle   *modelstore.Bundle
	ranker   *ranking.Ranker
	jobs     *repository.JobStore
	queue    jobqueue.Queue
	pool     *workerpool.Pool
	consumer *amqpintake.Consumer

	// Configuration
	workerCount  int
	queueSize    int
	jobRetention int
	jobTimeout   time.Duration
	parallelism  int
	defaultTopN  int
	maxTopN      int
	amqpURL      string
	amqpQueue    string

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a Service reading profiles from loader and the model bundle
// from models.
func New(loader repository.Loader, models modelstore.Source, opts ...Option) *Service {
	s := &Service{
		loader:       loader,
		models:       models,
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		jobRetention: defaultJobRetention,
		jobTimeout:   defaultJobTimeout,
		defaultTopN:  defaultTopN,
		maxTopN:      defaultMaxTopN,
		amqpQueue:    defaultAMQPQueue,
		logger:       logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultTopN > s.maxTopN {
		s.defaultTopN = s.maxTopN
	}

	return s
}

// Start loads profiles and models, then starts the job pipeline. Any load
// failure aborts startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.loader == nil {
		return fmt.Errorf("%w: no profile loader", ranking.ErrDataUnavailable)
	}
	if s.models == nil {
		return fmt.Errorf("%w: no model source", ranking.ErrConfiguration)
	}

	s.logger.Info(ctx, "starting recommendation service...")

	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	bundle, err := modelstore.Load(ctx, s.models)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	rc, err := ranking.NewContext(snapshot, bundle.Ensemble, bundle.Encoder)
	if err != nil {
		return fmt.Errorf("build ranking context: %w", err)
	}

	rankerOpts := []ranking.Option{ranking.WithLogger(s.logger.Named("ranker"))}
	if s.parallelism > 0 {
		rankerOpts = append(rankerOpts, ranking.WithParallelism(s.parallelism))
	}
	s.snapshot = snapshot
	s.bundle = bundle
	s.ranker = ranking.NewRanker(rc, rankerOpts...)

	metrics.UpdateProfilesLoaded(snapshot.Count(ctx))
	metrics.UpdateEnsembleSize(bundle.Ensemble.Size())

	// Workers outlive the startup context.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.jobs = repository.NewJobStore(s.jobRetention)
	s.queue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.ranker, s.jobs,
		workerpool.WithLogger(s.logger),
		workerpool.WithJobTimeout(s.jobTimeout))
	s.pool.Start(runCtx)

	if s.amqpURL != "" {
		s.consumer = amqpintake.NewConsumer(s.amqpURL, s.amqpQueue, s,
			amqpintake.WithDefaultTopN(s.defaultTopN),
			amqpintake.WithRetryable(IsRetryable),
			amqpintake.WithLogger(s.logger.Named("amqp")))
		if err := s.consumer.Start(runCtx); err != nil {
			cancel()
			_ = s.pool.Shutdown(ctx)
			s.consumer = nil
			return fmt.Errorf("start amqp intake: %w", err)
		}
	}

	s.cancel = cancel
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("profiles", snapshot.Count(ctx)),
		logger.Int("orphanSkills", snapshot.Orphans()),
		logger.Int("predictors", bundle.Ensemble.Size()),
		logger.String("modelVersion", bundle.Version),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("amqp", s.consumer != nil),
	)

	return nil
}

// Stop gracefully shuts down the job pipeline. Queued jobs are drained
// until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping recommendation service...")

	var errs []error
	if s.consumer != nil {
		if err := s.consumer.Close(); err != nil {
			errs = append(errs, err)
		}
		s.consumer = nil
	}
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
	return errors.Join(errs...)
}

// Ready reports whether profiles and models are loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.ranker != nil
}

// DefaultTopN is the result count used when a request omits top_n.
func (s *Service) DefaultTopN() int { return s.defaultTopN }

// MaxTopN is the largest number of results returned; larger top_n values are clamped.
func (s *Service) MaxTopN() int { return s.maxTopN }

func (s *Service) currentRanker() (*ranking.Ranker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.ranker == nil {
		return nil, ErrNotReady
	}
	return s.ranker, nil
}

func (s *Service) clampTopN(topN int) int {
	return min(topN, s.maxTopN)
}

// Recommend ranks employees for taskText synchronously.
func (s *Service) Recommend(ctx context.Context, taskText string, topN int) ([]types.Recommendation, error) {
	r, err := s.currentRanker()
	if err != nil {
		return nil, err
	}
	return r.Recommend(ctx, taskText, s.clampTopN(topN))
}

// SubmitJob registers an asynchronous recommendation job. A job id that
// already exists returns the existing job with created false. A missing id
// is generated.
func (s *Service) SubmitJob(ctx context.Context, req model.JobRequest) (types.Job, bool, error) {
	req.TopN = s.clampTopN(req.TopN)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Job{}, false, ErrNotReady
	}

	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}
	job, created := s.jobs.Create(types.Job{
		ID:         req.JobID,
		TaskSkills: req.TaskSkills,
		TopN:       req.TopN,
		Status:     types.JobQueued,
	})
	if !created {
		metrics.RecordJobDuplicate()
		s.logger.Debug(ctx, "duplicate job submission", logger.String("job_id", job.ID))
		return job, false, nil
	}

	if !s.queue.Enqueue(ctx, req) {
		// Roll back so a retry with the same id is accepted.
		s.jobs.Delete(req.JobID)
		metrics.RecordErrorByComponent("service", "queue_full")
		return types.Job{}, false, ErrQueueFull
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job queued",
		logger.String("job_id", job.ID),
		logger.Int("top_n", job.TopN))
	return job, true, nil
}

// Job returns the current state of a submitted job.
func (s *Service) Job(_ context.Context, id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Job{}, ErrNotReady
	}

	job, err := s.jobs.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return types.Job{}, err
	}
	return job, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"defaultTopN": s.defaultTopN,
		"maxTopN":     s.maxTopN,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		profiles := s.snapshot.Count(ctx)

		stats["queueLength"] = queueLen
		stats["jobs"] = s.jobs.Len()
		stats["profiles"] = profiles
		stats["orphanSkills"] = s.snapshot.Orphans()
		stats["profilesLoadedAt"] = s.snapshot.LoadedAt().UTC().Format(time.RFC3339)
		stats["predictors"] = s.bundle.Ensemble.Names()
		stats["modelVersion"] = s.bundle.Version
		stats["teams"] = s.bundle.Encoder.Classes()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["amqp"] = s.consumer != nil

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateProfilesLoaded(profiles)
	}

	return stats
}

// IsRetryable reports whether a submit error is transient backpressure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQueueFull) || errors.Is(err, ErrNotReady)
}
