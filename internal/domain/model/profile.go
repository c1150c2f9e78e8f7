// Package model contains domain models passed between layers.
package model

// FeatureWidth is the number of values in a FeatureVector.
const FeatureWidth = 5

// EmployeeProfile is the aggregated performance summary of one employee.
// Rows are produced upstream and are read-only inside the service.
type EmployeeProfile struct {
	EmployeeID       string  `json:"employee_id" validate:"required"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Team             string  `json:"team"`                                // categorical label, may be empty
	AvgEfficiency    float64 `json:"avg_efficiency"`                      // historical mean, 0-100
	AvgFeedbackScore float64 `json:"avg_feedback_score" validate:"gte=0"` // 1-5 scale
	TasksDoneCount   int     `json:"tasks_done_count" validate:"gte=0"`   // completed tasks
}

// FeatureVector is the per (task, employee) predictor input.
type FeatureVector struct {
	SkillMatchRatio  float64
	AvgEfficiency    float64
	AvgFeedbackScore float64
	TasksDoneCount   float64
	TeamCode         float64
}

// Values returns the features in the column order the predictors were trained on.
func (v FeatureVector) Values() [FeatureWidth]float64 {
	return [FeatureWidth]float64{
		v.SkillMatchRatio,
		v.AvgEfficiency,
		v.AvgFeedbackScore,
		v.TasksDoneCount,
		v.TeamCode,
	}
}
