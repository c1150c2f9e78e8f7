// Package client is an HTTP client for the recommendation API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 200 * time.Millisecond
	maxErrorBody        = 4096
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

// IsBackpressure reports whether the server asked the caller to slow down.
func IsBackpressure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// Client calls a running recommendation service.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// New creates a client for baseURL, e.g. http://localhost:9080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type recommendationBody struct {
	TaskSkills string `json:"task_skills"`
	TopN       int    `json:"top_n"`
}

// Recommend ranks employees for taskSkills synchronously.
func (c *Client) Recommend(ctx context.Context, taskSkills string, topN int) ([]types.Recommendation, error) {
	var recs []types.Recommendation
	body := recommendationBody{TaskSkills: taskSkills, TopN: topN}
	if _, err := c.do(ctx, http.MethodPost, "/api/recommendations", body, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SubmitJob queues an asynchronous job. The bool is false when a job with
// the same id already existed.
func (c *Client) SubmitJob(ctx context.Context, req model.JobRequest) (types.Job, bool, error) {
	var job types.Job
	status, err := c.do(ctx, http.MethodPost, "/api/recommendations/jobs", req, &job)
	if err != nil {
		return types.Job{}, false, err
	}
	return job, status == http.StatusAccepted, nil
}

// Job fetches a job by id.
func (c *Client) Job(ctx context.Context, id string) (types.Job, error) {
	var job types.Job
	if _, err := c.do(ctx, http.MethodGet, "/api/recommendations/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// WaitJob polls until the job is done or failed, or ctx ends.
func (c *Client) WaitJob(ctx context.Context, id string) (types.Job, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.Job(ctx, id)
		if err != nil {
			return types.Job{}, err
		}
		if job.Status == types.JobDone || job.Status == types.JobFailed {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ready reports whether /readyz answers 200.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}

// Stats returns the /stats document.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{}
	if _, err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// do sends an optional JSON body and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
