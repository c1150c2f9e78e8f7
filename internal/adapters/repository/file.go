package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// profileDocument is the on-disk profile export.
type profileDocument struct {
	Employees []employeeDocument `json:"employees"`
}

type employeeDocument struct {
	model.EmployeeProfile
	Skills []string `json:"skills"`
}

// FileLoader reads profiles from a JSON export.
type FileLoader struct {
	path string
	cfg  loaderConfig
}

// NewFileLoader creates a loader for the document at path.
func NewFileLoader(path string, opts ...Option) *FileLoader {
	return &FileLoader{path: path, cfg: newLoaderConfig(opts)}
}

// Load reads and decodes the document and builds a snapshot.
func (l *FileLoader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ranking.ErrDataUnavailable, l.path, err)
	}
	snap, err := DecodeProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	elapsed := time.Since(start)
	metrics.RecordProfileLoad(float64(elapsed.Milliseconds()), snap.LoadedAt().Unix())
	l.cfg.logger.Info(ctx, "profiles loaded from file",
		logger.String("path", l.path),
		logger.Int("employees", snap.Count(ctx)),
		logger.Duration("took", elapsed))
	return snap, nil
}

// DecodeProfiles builds a snapshot from a JSON profile document.
func DecodeProfiles(data []byte) (*Snapshot, error) {
	var doc profileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode profiles: %w", ranking.ErrDataUnavailable, err)
	}

	profiles := make([]model.EmployeeProfile, 0, len(doc.Employees))
	var records []SkillRecord
	for _, e := range doc.Employees {
		profiles = append(profiles, e.EmployeeProfile)
		for _, s := range e.Skills {
			records = append(records, SkillRecord{EmployeeID: e.EmployeeID, Skill: s})
		}
	}

	snap, err := NewSnapshot(profiles, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrDataUnavailable, err)
	}
	return snap, nil
}

// NewLoader picks a loader by source name: "file" or "postgres".
func NewLoader(source, path string, db DBTX, opts ...Option) (Loader, error) {
	switch source {
	case "", "file":
		return NewFileLoader(path, opts...), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("%w: postgres source without a connection", ranking.ErrDataUnavailable)
		}
		return NewPostgresLoader(db, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}
