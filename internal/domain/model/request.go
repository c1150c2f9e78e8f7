package model

// JobRequest is an accepted asynchronous recommendation request as it
// travels through the job queue.
type JobRequest struct {
	JobID      string `json:"job_id"`
	TaskSkills string `json:"task_skills"`
	TopN       int    `json:"top_n"`
}
