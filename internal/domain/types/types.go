// Package types contains common types used across the application
package types

import "time"

// Recommendation is one ranked candidate returned to callers.
type Recommendation struct {
	EmployeeID          string   `json:"employee_id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	PredictedEfficiency float64  `json:"predicted_efficiency"`
	SkillMatch          float64  `json:"skill_match"`
	Team                string   `json:"team"`
	Skills              []string `json:"skills"`
}

// JobStatus is the lifecycle state of an asynchronous recommendation job.
type JobStatus string

// Job states.
const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Finished reports whether the job reached a terminal state.
func (s JobStatus) Finished() bool {
	return s == JobDone || s == JobFailed
}

// Job is the read shape of an asynchronous recommendation job.
type Job struct {
	ID         string           `json:"job_id"`
	TaskSkills string           `json:"task_skills"`
	TopN       int              `json:"top_n"`
	Status     JobStatus        `json:"status"`
	Results    []Recommendation `json:"results,omitempty"`
	Error      string           `json:"error,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
