package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/okian/skillmatch/internal/adapters/http/api"
	service "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	mu        sync.Mutex
	ready     bool
	recs      []types.Recommendation
	recErr    error
	submitErr error
	jobs      map[string]types.Job
	lastTask  string
	lastTopN  int
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		ready: true,
		recs: []types.Recommendation{
			{EmployeeID: "E1", Name: "Ada", PredictedEfficiency: 91.5, SkillMatch: 1, Team: "data", Skills: []string{"python", "sql"}},
			{EmployeeID: "E2", Name: "Bob", PredictedEfficiency: 70, SkillMatch: 0.5, Team: "", Skills: []string{"sql"}},
			{EmployeeID: "E3", Name: "Cy", PredictedEfficiency: 20, SkillMatch: 0, Team: "ops", Skills: []string{}},
		},
		jobs: make(map[string]types.Job),
	}
}

func (m *mockDependencies) Recommend(_ context.Context, task string, topN int) ([]types.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTask, m.lastTopN = task, topN
	if m.recErr != nil {
		return nil, m.recErr
	}
	if topN <= 0 {
		return []types.Recommendation{}, nil
	}
	if topN > len(m.recs) {
		topN = len(m.recs)
	}
	return m.recs[:topN], nil
}

func (m *mockDependencies) DefaultTopN() int { return 10 }
func (m *mockDependencies) Ready() bool      { return m.ready }

func (m *mockDependencies) SubmitJob(_ context.Context, req model.JobRequest) (types.Job, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return types.Job{}, false, m.submitErr
	}
	if req.JobID == "" {
		req.JobID = fmt.Sprintf("gen-%d", len(m.jobs)+1)
	}
	if job, ok := m.jobs[req.JobID]; ok {
		return job, false, nil
	}
	job := types.Job{ID: req.JobID, TaskSkills: req.TaskSkills, TopN: req.TopN, Status: types.JobQueued}
	m.jobs[req.JobID] = job
	return job, true, nil
}

func (m *mockDependencies) Job(_ context.Context, id string) (types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", service.ErrJobNotFound, id)
	}
	return job, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newHandler(deps *mockDependencies, opts ...api.Option) http.Handler {
	stats := &mockStatsProvider{stats: map[string]interface{}{"started": true, "profiles": 3}}
	return api.NewServer(deps, stats, opts...).Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeRecs(w *httptest.ResponseRecorder) []types.Recommendation {
	var recs []types.Recommendation
	So(json.Unmarshal(w.Body.Bytes(), &recs), ShouldBeNil)
	return recs
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body.Code
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDependencies()
		h := newHandler(deps)

		Convey("Health endpoint should report ok", func() {
			w := do(h, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Readiness follows the dependencies", func() {
			So(do(h, "GET", "/readyz", "").Code, ShouldEqual, http.StatusOK)

			deps.ready = false
			w := do(h, "GET", "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "not_ready")
		})

		Convey("Stats endpoint should return provider stats", func() {
			w := do(h, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["profiles"], ShouldEqual, 3.0)
		})

		Convey("Metrics endpoint should serve Prometheus text", func() {
			do(h, "GET", "/healthz", "")
			w := do(h, "GET", "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "skillmatch_engine_http_requests_total")
		})

		Convey("Docs are served", func() {
			So(do(h, "GET", "/api-docs", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, "GET", "/openapi.yaml", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Root redirects to the dashboard", func() {
			w := do(h, "GET", "/", "")
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/dashboard")

			w = do(h, "GET", "/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/recommendations")
		})

		Convey("Unknown routes return a JSON 404", func() {
			w := do(h, "GET", "/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("Responses carry a request id", func() {
			w := do(h, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			req := httptest.NewRequest("GET", "/healthz", http.NoBody)
			req.Header.Set("X-Request-Id", "abc-123")
			w = httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("CORS preflight is answered", func() {
			req := httptest.NewRequest("OPTIONS", "/api/recommendations", http.NoBody)
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestRecommendations(t *testing.T) {
	Convey("Given the recommendations endpoint", t, func() {
		deps := newMockDependencies()
		h := newHandler(deps)

		Convey("When posting a task with top_n", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"Python, SQL","top_n":2}`)

			Convey("Then it returns the ranked list", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				recs := decodeRecs(w)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].EmployeeID, ShouldEqual, "E1")
				So(deps.lastTask, ShouldEqual, "Python, SQL")
				So(deps.lastTopN, ShouldEqual, 2)
			})

			Convey("And team and skills are always present", func() {
				So(w.Body.String(), ShouldContainSubstring, `"team":""`)
				So(w.Body.String(), ShouldContainSubstring, `"skills":["sql"]`)
			})
		})

		Convey("When top_n is a numeric string", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"go","top_n":"1"}`)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastTopN, ShouldEqual, 1)
			})
		})

		Convey("When top_n is omitted", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"go"}`)

			Convey("Then the default applies", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastTopN, ShouldEqual, 10)
			})
		})

		Convey("When top_n is zero or negative", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"go","top_n":-3}`)

			Convey("Then an empty list is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When top_n is not numeric", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"go","top_n":"ten"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When top_n exceeds the number of employees", func() {
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"go","top_n":5000}`)

			Convey("Then every employee is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeRecs(w), ShouldHaveLength, 3)
				So(deps.lastTopN, ShouldEqual, 5000)
			})
		})

		Convey("When the body is invalid", func() {
			for _, body := range []string{`{"task_skills":`, `[]`} {
				w := do(h, "POST", "/api/recommendations", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
			w := do(h, "POST", "/api/recommendations", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the task is too long", func() {
			long := strings.Repeat("a", 5000)
			w := do(h, "POST", "/api/recommendations", `{"task_skills":"`+long+`"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When querying with GET", func() {
			w := do(h, "GET", "/api/recommendations?task_skills=python&top_n=3", "")

			Convey("Then the same semantics apply", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeRecs(w), ShouldHaveLength, 3)
				So(deps.lastTask, ShouldEqual, "python")
			})

			Convey("And a bad top_n is rejected", func() {
				w := do(h, "GET", "/api/recommendations?task_skills=python&top_n=x", "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And a large top_n returns everyone", func() {
				w := do(h, "GET", "/api/recommendations?top_n=1000", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeRecs(w), ShouldHaveLength, 3)
			})
		})

		Convey("When the service fails", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{service.ErrNotReady, http.StatusServiceUnavailable, "unavailable"},
				{fmt.Errorf("%w: db down", ranking.ErrDataUnavailable), http.StatusServiceUnavailable, "unavailable"},
				{fmt.Errorf("employee E2: %w: boom", ranking.ErrScoring), http.StatusInternalServerError, "scoring_failed"},
				{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
				{errors.New("unexpected"), http.StatusInternalServerError, "internal_error"},
			}
			for _, tc := range cases {
				deps.recErr = tc.err
				w := do(h, "POST", "/api/recommendations", `{"task_skills":"go"}`)
				So(w.Code, ShouldEqual, tc.status)
				So(errorCode(w), ShouldEqual, tc.code)
			}
		})
	})
}

func TestRecommendations_RateLimit(t *testing.T) {
	Convey("Given a server limited to two requests per minute", t, func() {
		h := newHandler(newMockDependencies(), api.WithRateLimit(2))

		Convey("The third request is throttled", func() {
			So(do(h, "GET", "/api/recommendations?task_skills=go", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, "GET", "/api/recommendations?task_skills=go", "").Code, ShouldEqual, http.StatusOK)
			w := do(h, "GET", "/api/recommendations?task_skills=go", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "rate_limited")
		})

		Convey("Health checks are not limited", func() {
			for i := 0; i < 5; i++ {
				So(do(h, "GET", "/healthz", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestJobs(t *testing.T) {
	Convey("Given the jobs endpoints", t, func() {
		deps := newMockDependencies()
		h := newHandler(deps)

		Convey("When submitting a new job", func() {
			w := do(h, "POST", "/api/recommendations/jobs", `{"job_id":"j1","task_skills":"go","top_n":"2"}`)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var job types.Job
				So(json.Unmarshal(w.Body.Bytes(), &job), ShouldBeNil)
				So(job.ID, ShouldEqual, "j1")
				So(job.Status, ShouldEqual, types.JobQueued)
				So(job.TopN, ShouldEqual, 2)
			})

			Convey("And resubmitting returns the existing job", func() {
				w := do(h, "POST", "/api/recommendations/jobs", `{"job_id":"j1","task_skills":"rust"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"task_skills":"go"`)
			})

			Convey("And the job can be fetched", func() {
				w := do(h, "GET", "/api/recommendations/jobs/j1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"queued"`)
			})
		})

		Convey("When submitting without top_n", func() {
			w := do(h, "POST", "/api/recommendations/jobs", `{"task_skills":"go"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"top_n":10`)
		})

		Convey("When the queue is full", func() {
			deps.submitErr = service.ErrQueueFull
			w := do(h, "POST", "/api/recommendations/jobs", `{"task_skills":"go"}`)

			Convey("Then backpressure is reported", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(errorCode(w), ShouldEqual, "backpressure")
			})
		})

		Convey("When top_n is larger than the workforce", func() {
			w := do(h, "POST", "/api/recommendations/jobs", `{"job_id":"big","task_skills":"go","top_n":5000}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.jobs["big"].TopN, ShouldEqual, 5000)
		})

		Convey("When the job id is not printable", func() {
			w := do(h, "POST", "/api/recommendations/jobs", "{\"job_id\":\"a\\u0007\",\"task_skills\":\"go\"}")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching an unknown job", func() {
			w := do(h, "GET", "/api/recommendations/jobs/missing", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("boom")

		Convey("WrapKind exposes kind and cause", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrNotFound)
			So(err.Error(), ShouldEqual, "api.op: not found")
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
		})

		Convey("Wrap keeps nil as nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		})
	})
}
