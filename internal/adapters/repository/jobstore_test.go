package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/skillmatch/internal/domain/types"
)

func TestJobStore_CreateIsIdempotent(t *testing.T) {
	s := NewJobStore(10)

	job, created := s.Create(types.Job{ID: "j1", TaskSkills: "go", TopN: 3, Status: types.JobQueued})
	if !created {
		t.Fatal("expected first create to succeed")
	}
	if job.SubmittedAt.IsZero() {
		t.Error("expected submitted time to be set")
	}

	again, created := s.Create(types.Job{ID: "j1", TaskSkills: "rust", TopN: 1, Status: types.JobQueued})
	if created {
		t.Error("expected duplicate create to be rejected")
	}
	if again.TaskSkills != "go" {
		t.Errorf("expected existing job back, got %+v", again)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 job, got %d", s.Len())
	}
}

func TestJobStore_Update(t *testing.T) {
	s := NewJobStore(10)
	s.Create(types.Job{ID: "j1", Status: types.JobQueued})

	err := s.Update("j1", func(j *types.Job) {
		j.Status = types.JobDone
		j.Results = []types.Recommendation{{EmployeeID: "E1"}}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job, err := s.Get("j1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != types.JobDone || len(job.Results) != 1 {
		t.Errorf("unexpected job %+v", job)
	}
	if job.FinishedAt == nil {
		t.Error("expected finished time on terminal job")
	}

	if err := s.Update("missing", func(*types.Job) {}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobStore_EvictsOldestFinished(t *testing.T) {
	s := NewJobStore(2)
	s.Create(types.Job{ID: "a", Status: types.JobDone})
	s.Create(types.Job{ID: "b", Status: types.JobQueued})
	s.Create(types.Job{ID: "c", Status: types.JobDone})

	if _, err := s.Get("a"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected oldest finished job to be evicted, got %v", err)
	}
	for _, id := range []string{"b", "c"} {
		if _, err := s.Get(id); err != nil {
			t.Errorf("expected %s to be kept: %v", id, err)
		}
	}

	// Pending jobs are never evicted, even past retention.
	s.Create(types.Job{ID: "d", Status: types.JobQueued})
	s.Create(types.Job{ID: "e", Status: types.JobQueued})
	for _, id := range []string{"b", "d", "e"} {
		if _, err := s.Get(id); err != nil {
			t.Errorf("expected pending %s to be kept: %v", id, err)
		}
	}
}

func TestJobStore_Delete(t *testing.T) {
	s := NewJobStore(0)
	s.Create(types.Job{ID: "a"})
	s.Delete("a")
	s.Delete("unknown")
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	if _, created := s.Create(types.Job{ID: "a"}); !created {
		t.Error("expected id to be reusable after delete")
	}
}

func TestJobStore_Concurrent(t *testing.T) {
	s := NewJobStore(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i%10)
			s.Create(types.Job{ID: id, Status: types.JobQueued})
			_ = s.Update(id, func(j *types.Job) { j.Status = types.JobRunning })
			_, _ = s.Get(id)
		}(i)
	}
	wg.Wait()
	if s.Len() != 10 {
		t.Errorf("expected 10 distinct jobs, got %d", s.Len())
	}
}
