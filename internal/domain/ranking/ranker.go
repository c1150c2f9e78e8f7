// Package ranking scores every employee for a task and returns the best fits.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillmatch/internal/domain/encoder"
	"github.com/okian/skillmatch/internal/domain/features"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Store is the read side of the employee profile store the ranker needs.
// Profiles must come back in a stable order (employee id ascending).
type Store interface {
	Profiles(ctx context.Context) ([]model.EmployeeProfile, error)
	Skills(ctx context.Context, employeeID string) (skills.Set, error)
}

// Context bundles the immutable inputs of a ranking: profiles, the trained
// ensemble and the team encoder. It is built once and shared by all requests.
type Context struct {
	store    Store
	ensemble *scoring.Ensemble
	encoder  *encoder.Encoder
}

// NewContext validates and bundles ranking inputs.
func NewContext(store Store, ensemble *scoring.Ensemble, enc *encoder.Encoder) (*Context, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: profile store is nil", ErrDataUnavailable)
	}
	if ensemble == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, scoring.ErrEmptyEnsemble)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, encoder.ErrNoClasses)
	}
	return &Context{store: store, ensemble: ensemble, encoder: enc}, nil
}

// Ensemble returns the scoring ensemble.
func (c *Context) Ensemble() *scoring.Ensemble { return c.ensemble }

// Encoder returns the team encoder.
func (c *Context) Encoder() *encoder.Encoder { return c.encoder }

// Ranker produces top-N recommendations. Safe for concurrent use.
type Ranker struct {
	rc          *Context
	parallelism int
	logger      logger.Logger
}

// NewRanker creates a ranker over rc.
func NewRanker(rc *Context, opts ...Option) *Ranker {
	r := &Ranker{
		rc:          rc,
		parallelism: defaultParallelism(),
		logger:      logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Recommend scores every employee against taskText and returns at most topN
// recommendations ordered by predicted efficiency, highest first. Ties keep
// store order. topN <= 0 yields an empty result.
func (r *Ranker) Recommend(ctx context.Context, taskText string, topN int) ([]types.Recommendation, error) {
	start := time.Now()
	if topN <= 0 {
		metrics.RecordRecommendation()
		return []types.Recommendation{}, nil
	}

	task := skills.Normalize(taskText)
	profiles, err := r.rc.store.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	recs := make([]types.Recommendation, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := r.score(gctx, task, &profiles[i])
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.recordFailure(ctx, err, start)
		return nil, err
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].PredictedEfficiency > recs[b].PredictedEfficiency
	})
	if topN < len(recs) {
		recs = recs[:topN]
	}

	metrics.RecordRecommendation()
	metrics.RecordEmployeesScored(len(profiles))
	metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	return recs, nil
}

// score builds one employee's recommendation.
func (r *Ranker) score(ctx context.Context, task skills.Set, p *model.EmployeeProfile) (types.Recommendation, error) {
	have, err := r.rc.store.Skills(ctx, p.EmployeeID)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("employee %s: %w: %w", p.EmployeeID, ErrDataUnavailable, err)
	}

	if !r.rc.encoder.Known(p.Team) {
		metrics.RecordTeamFallback()
	}
	v := features.Build(task, *p, have, r.rc.encoder)

	predicted, err := r.rc.ensemble.Score(v)
	if err != nil {
		var perr *scoring.PredictorError
		if errors.As(err, &perr) {
			metrics.RecordPredictorError(perr.Predictor)
		}
		return types.Recommendation{}, fmt.Errorf("employee %s: %w: %w", p.EmployeeID, ErrScoring, err)
	}

	return types.Recommendation{
		EmployeeID:          p.EmployeeID,
		Name:                p.Name,
		Email:               p.Email,
		PredictedEfficiency: round2(predicted),
		SkillMatch:          round2(v.SkillMatchRatio),
		Team:                p.Team,
		Skills:              have.Sorted(),
	}, nil
}

func (r *Ranker) recordFailure(ctx context.Context, err error, start time.Time) {
	kind := "data"
	switch {
	case errors.Is(err, ErrScoring):
		kind = "scoring"
		metrics.RecordScoringError()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = "canceled"
	}
	metrics.RecordErrorByComponent("ranking", kind)
	metrics.RecordErrorLatency("ranking", kind, float64(time.Since(start).Milliseconds()))
	r.logger.Error(ctx, "recommendation failed", logger.String("kind", kind), logger.Error(err))
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
