package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/skillmatch/internal/domain/types"
)

const defaultJobRetention = 10000

// JobStore keeps asynchronous recommendation jobs in memory. Once more than
// retention jobs are held, the oldest finished jobs are evicted.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*types.Job
	order     []string // insertion order
	retention int
}

// NewJobStore creates a job store. retention <= 0 uses the default.
func NewJobStore(retention int) *JobStore {
	if retention <= 0 {
		retention = defaultJobRetention
	}
	return &JobStore{
		jobs:      make(map[string]*types.Job),
		retention: retention,
	}
}

// Create stores job unless its id exists. It returns the stored job and
// whether it was created by this call.
func (s *JobStore) Create(job types.Job) (types.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[job.ID]; ok {
		return *existing, false
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	stored := job
	s.jobs[job.ID] = &stored
	s.order = append(s.order, job.ID)
	s.evictLocked()
	return stored, true
}

// Get returns a copy of the job.
func (s *JobStore) Get(id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *job, nil
}

// Update applies fn to the stored job under the store lock.
func (s *JobStore) Update(id string, fn func(*types.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	fn(job)
	if job.Status.Finished() && job.FinishedAt == nil {
		now := time.Now().UTC()
		job.FinishedAt = &now
	}
	return nil
}

// Delete removes a job. Unknown ids are ignored.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return
	}
	delete(s.jobs, id)
	s.compactLocked()
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// evictLocked drops the oldest finished jobs while over retention.
func (s *JobStore) evictLocked() {
	excess := len(s.jobs) - s.retention
	if excess <= 0 {
		return
	}
	for _, id := range s.order {
		if excess == 0 {
			break
		}
		if job := s.jobs[id]; job != nil && job.Status.Finished() {
			delete(s.jobs, id)
			excess--
		}
	}
	s.compactLocked()
}

// compactLocked removes ids of deleted jobs from the insertion order.
func (s *JobStore) compactLocked() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.jobs[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}
