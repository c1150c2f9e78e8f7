package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
)

// Result is the outcome of one task in a batch.
type Result struct {
	Task            string                 `json:"task"`
	JobID           string                 `json:"job_id,omitempty"`
	Recommendations []types.Recommendation `json:"recommendations,omitempty"`
	Duplicate       bool                   `json:"duplicate,omitempty"`
	Err             error                  `json:"-"`
	Error           string                 `json:"error,omitempty"`
}

// BatchStats summarizes a batch run.
type BatchStats struct {
	Submitted int
	Succeeded int
	Duplicate int
	Failed    int
	Duration  time.Duration
}

// Batch runs many tasks against the service with bounded concurrency.
type Batch struct {
	client  *Client
	workers int
	topN    int
	async   bool
}

// NewBatch creates a batch runner. workers < 1 means one.
func NewBatch(c *Client, workers, topN int, async bool) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{client: c, workers: workers, topN: topN, async: async}
}

// Run executes every task and returns results in task order. Per-task
// failures are reported in Result.Err; only ctx cancellation aborts the run.
func (b *Batch) Run(ctx context.Context, tasks []string) ([]Result, BatchStats, error) {
	start := time.Now()
	results := make([]Result, len(tasks))

	var succeeded, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := b.runOne(gctx, i, task)
			if res.Err != nil {
				res.Error = res.Err.Error()
			}
			results[i] = res
			switch {
			case res.Err != nil:
				failed.Add(1)
				if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
					return res.Err
				}
			case res.Duplicate:
				duplicate.Add(1)
			default:
				succeeded.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	stats := BatchStats{
		Submitted: int(succeeded.Load() + duplicate.Load() + failed.Load()),
		Succeeded: int(succeeded.Load()),
		Duplicate: int(duplicate.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	return results, stats, err
}

func (b *Batch) runOne(ctx context.Context, i int, task string) Result {
	res := Result{Task: task}
	if !b.async {
		res.Recommendations, res.Err = b.client.Recommend(ctx, task, b.topN)
		return res
	}

	req := model.JobRequest{JobID: fmt.Sprintf("batch-%d-%d", time.Now().UnixNano(), i), TaskSkills: task, TopN: b.topN}
	job, created, err := b.client.SubmitJob(ctx, req)
	if err != nil {
		res.Err = err
		return res
	}
	res.JobID = job.ID
	res.Duplicate = !created

	job, err = b.client.WaitJob(ctx, job.ID)
	switch {
	case err != nil:
		res.Err = err
	case job.Status == types.JobFailed:
		res.Err = fmt.Errorf("job %s failed: %s", job.ID, job.Error)
	default:
		res.Recommendations = job.Results
	}
	return res
}
