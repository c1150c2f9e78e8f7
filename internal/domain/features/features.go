// Package features builds predictor inputs for a (task, employee) pair.
package features

import (
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// TeamEncoder maps a team label to its trained integer code.
type TeamEncoder interface {
	Encode(label string) int
}

// MatchRatio is the share of task skills the employee has. An empty task
// matches nothing and yields 0.
func MatchRatio(task, employee skills.Set) float64 {
	if task.Len() == 0 {
		return 0
	}
	return float64(task.Intersect(employee)) / float64(task.Len())
}

// Build computes the feature vector for one employee. It has no side effects.
func Build(task skills.Set, p model.EmployeeProfile, employee skills.Set, enc TeamEncoder) model.FeatureVector { //nolint:gocritic // hugeParam: profile is read-only value
	return model.FeatureVector{
		SkillMatchRatio:  MatchRatio(task, employee),
		AvgEfficiency:    p.AvgEfficiency,
		AvgFeedbackScore: p.AvgFeedbackScore,
		TasksDoneCount:   float64(p.TasksDoneCount),
		TeamCode:         float64(enc.Encode(p.Team)),
	}
}
