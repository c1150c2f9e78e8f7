// Package repository holds the employee profile snapshot, the loaders that
// build it and the store of asynchronous recommendation jobs.
package repository

import (
	"context"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// Store provides read access to employee profiles and their skills.
type Store interface {
	// Profiles returns every profile ordered by employee id ascending.
	Profiles(ctx context.Context) ([]model.EmployeeProfile, error)

	// Skills returns the normalized skill set of an employee.
	// Returns ErrNotFound if the employee is unknown.
	Skills(ctx context.Context, employeeID string) (skills.Set, error)

	// Profile returns one employee's profile.
	// Returns ErrNotFound if the employee is unknown.
	Profile(ctx context.Context, employeeID string) (model.EmployeeProfile, error)

	// Count returns the number of employees.
	Count(ctx context.Context) int
}

// Loader reads the profile table and skill mapping from a source.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}
