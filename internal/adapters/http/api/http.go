// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/skillmatch/internal/adapters/http/swagger"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

const (
	maxBodyBytes          = 1 << 20
	maxTaskLength         = 4096
	defaultRequestTimeout = 10 * time.Second
	defaultRateLimit      = 600 // per minute per client IP
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Recommender serves synchronous rankings.
type Recommender interface {
	Recommend(ctx context.Context, taskText string, topN int) ([]types.Recommendation, error)
	DefaultTopN() int
}

// JobService accepts and reports asynchronous recommendation jobs.
type JobService interface {
	SubmitJob(ctx context.Context, req model.JobRequest) (types.Job, bool, error)
	Job(ctx context.Context, id string) (types.Job, error)
}

// ReadinessProbe reports whether profiles and models are loaded.
type ReadinessProbe interface {
	Ready() bool
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Recommender
	JobService
	ReadinessProbe
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	jobsHandler            *JobsHandler
	dashboardHandler       *dashboardHandler

	corsOrigins    []string
	rateLimit      int
	requestTimeout time.Duration
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins:    []string{"*"},
		rateLimit:      defaultRateLimit,
		requestTimeout: defaultRequestTimeout,
		logger:         logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendationsHandler = NewRecommendationsHandler(deps, s.logger)
	s.jobsHandler = NewJobsHandler(deps, deps, s.logger)
	s.dashboardHandler = newDashboardHandler()
	return s
}

// Handler builds the chi router with every route and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", ErrNotFound))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	r.Get("/dashboard", s.dashboardHandler.HandleDashboard)
	r.With(metered("healthz")).Get("/healthz", s.healthHandler.HandleHealth)
	r.With(metered("readyz")).Get("/readyz", s.healthHandler.HandleReady)
	r.With(metered("stats")).Get("/stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(r)

	r.Route("/api/recommendations", func(r chi.Router) {
		r.Use(s.rateLimiter())
		r.Use(chimiddleware.Timeout(s.requestTimeout))

		r.With(metered("recommendations")).Post("/", s.recommendationsHandler.HandlePost)
		r.With(metered("recommendations")).Get("/", s.recommendationsHandler.HandleGet)
		r.With(metered("jobs")).Post("/jobs", s.jobsHandler.HandlePost)
		r.With(metered("jobs")).Get("/jobs/{id}", s.jobsHandler.HandleGet)
	})

	return r
}

func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	if s.rateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(s.rateLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.rate_limit", ErrBackpressure))
		}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError reports a service failure with the status its kind maps to.
func writeServiceError(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	status, code, kind := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("request_id", chimiddleware.GetReqID(ctx)),
			logger.Error(err))
	}
	writeError(w, status, code, WrapKind(op, kind, err))
}

// decodeBody reads a JSON body of at most maxBodyBytes into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return validate.Struct(v)
}
