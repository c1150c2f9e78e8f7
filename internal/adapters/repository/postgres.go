package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

const listEmployees = `SELECT employee_id, employee_name, email, team, employee_avg_efficiency, employee_feedback_mean, tasks_done_count FROM employees`

const listSkills = `SELECT employee_id, skill FROM skills`

// DBTX is the subset of *sql.DB the loader needs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// OpenPostgres opens and pings a postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", ranking.ErrDataUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ranking.ErrDataUnavailable, err)
	}
	return db, nil
}

// employeeRow mirrors one employees row; text columns may be NULL.
type employeeRow struct {
	EmployeeID     string
	Name           sql.NullString
	Email          sql.NullString
	Team           sql.NullString
	AvgEfficiency  sql.NullFloat64
	FeedbackMean   sql.NullFloat64
	TasksDoneCount sql.NullInt64
}

func (r employeeRow) profile() model.EmployeeProfile {
	return model.EmployeeProfile{
		EmployeeID:       r.EmployeeID,
		Name:             r.Name.String,
		Email:            r.Email.String,
		Team:             r.Team.String,
		AvgEfficiency:    r.AvgEfficiency.Float64,
		AvgFeedbackScore: r.FeedbackMean.Float64,
		TasksDoneCount:   int(r.TasksDoneCount.Int64),
	}
}

// PostgresLoader reads the employees and skills tables.
type PostgresLoader struct {
	db  DBTX
	cfg loaderConfig
}

// NewPostgresLoader creates a loader over db.
func NewPostgresLoader(db DBTX, opts ...Option) *PostgresLoader {
	return &PostgresLoader{db: db, cfg: newLoaderConfig(opts)}
}

// Load reads both tables and builds a snapshot.
func (l *PostgresLoader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, l.cfg.timeout)
	defer cancel()

	profiles, err := l.employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load employees: %w", ranking.ErrDataUnavailable, err)
	}
	records, err := l.skills(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load skills: %w", ranking.ErrDataUnavailable, err)
	}

	snap, err := NewSnapshot(profiles, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrDataUnavailable, err)
	}

	elapsed := time.Since(start)
	metrics.RecordProfileLoad(float64(elapsed.Milliseconds()), snap.LoadedAt().Unix())
	l.cfg.logger.Info(ctx, "profiles loaded from postgres",
		logger.Int("employees", snap.Count(ctx)),
		logger.Int("skill_records", len(records)),
		logger.Int("orphan_skills", snap.Orphans()),
		logger.Duration("took", elapsed))
	return snap, nil
}

func (l *PostgresLoader) employees(ctx context.Context) ([]model.EmployeeProfile, error) {
	rows, err := l.db.QueryContext(ctx, listEmployees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.EmployeeProfile
	for rows.Next() {
		var r employeeRow
		if err := rows.Scan(
			&r.EmployeeID,
			&r.Name,
			&r.Email,
			&r.Team,
			&r.AvgEfficiency,
			&r.FeedbackMean,
			&r.TasksDoneCount,
		); err != nil {
			return nil, err
		}
		items = append(items, r.profile())
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (l *PostgresLoader) skills(ctx context.Context) ([]SkillRecord, error) {
	rows, err := l.db.QueryContext(ctx, listSkills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SkillRecord
	for rows.Next() {
		var (
			r     SkillRecord
			skill sql.NullString
		)
		if err := rows.Scan(&r.EmployeeID, &skill); err != nil {
			return nil, err
		}
		r.Skill = skill.String
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
