package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// Efficiency bounds applied at the store boundary.
const (
	minEfficiency = 0
	maxEfficiency = 100
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// SkillRecord is one (employee, skill) row of the skill mapping.
type SkillRecord struct {
	EmployeeID string `json:"employee_id"`
	Skill      string `json:"skill"`
}

// Snapshot is an immutable, in-memory view of the profile table. Profiles are
// ordered by employee id and every profile has a skill set entry.
type Snapshot struct {
	profiles []model.EmployeeProfile
	index    map[string]int
	skills   map[string]skills.Set
	orphans  int
	loadedAt time.Time
}

// NewSnapshot validates profiles and joins them with their skill records.
// Efficiency is clamped to [0,100]; skill text is normalized. Skill records
// of unknown employees are counted and dropped.
func NewSnapshot(profiles []model.EmployeeProfile, records []SkillRecord) (*Snapshot, error) {
	s := &Snapshot{
		profiles: make([]model.EmployeeProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
		skills:   make(map[string]skills.Set, len(profiles)),
		loadedAt: time.Now(),
	}

	for i := range profiles {
		p := profiles[i]
		if err := checkProfile(&p); err != nil {
			return nil, fmt.Errorf("profile %d (%q): %w", i, p.EmployeeID, err)
		}
		if _, dup := s.skills[p.EmployeeID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmployee, p.EmployeeID)
		}
		p.AvgEfficiency = math.Max(minEfficiency, math.Min(maxEfficiency, p.AvgEfficiency))
		s.profiles = append(s.profiles, p)
		s.skills[p.EmployeeID] = skills.Set{}
	}

	for _, r := range records {
		set, ok := s.skills[r.EmployeeID]
		if !ok {
			s.orphans++
			continue
		}
		for tok := range skills.Normalize(r.Skill) {
			set[tok] = struct{}{}
		}
	}

	sort.Slice(s.profiles, func(a, b int) bool {
		return s.profiles[a].EmployeeID < s.profiles[b].EmployeeID
	})
	for i, p := range s.profiles {
		s.index[p.EmployeeID] = i
	}
	return s, nil
}

func checkProfile(p *model.EmployeeProfile) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %s", ErrInvalidProfile, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	for _, v := range []float64{p.AvgEfficiency, p.AvgFeedbackScore} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite aggregate", ErrInvalidProfile)
		}
	}
	return nil
}

// Profiles returns a copy of all profiles in employee id order.
func (s *Snapshot) Profiles(_ context.Context) ([]model.EmployeeProfile, error) {
	return slices.Clone(s.profiles), nil
}

// Skills returns the employee's skill set. Callers must not modify it.
func (s *Snapshot) Skills(_ context.Context, employeeID string) (skills.Set, error) {
	set, ok := s.skills[employeeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, employeeID)
	}
	return set, nil
}

// Profile returns one employee's profile.
func (s *Snapshot) Profile(_ context.Context, employeeID string) (model.EmployeeProfile, error) {
	i, ok := s.index[employeeID]
	if !ok {
		return model.EmployeeProfile{}, fmt.Errorf("%w: %s", ErrNotFound, employeeID)
	}
	return s.profiles[i], nil
}

// Count returns the number of employees.
func (s *Snapshot) Count(_ context.Context) int { return len(s.profiles) }

// Orphans returns how many skill records referenced unknown employees.
func (s *Snapshot) Orphans() int { return s.orphans }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

var _ Store = (*Snapshot)(nil)
