package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/utils"

	"github.com/sirupsen/logrus"
)

// ErrLoad wraps every failure to produce a dataset.
var ErrLoad = errors.New("dataset load failed")

// Source supplies the full, ordered attack dataset. There is no pagination
// and no partial result: a fetch either returns everything or fails.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.AttackRecord, error)
}

// ValidationError lists the records rejected at the source boundary.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	const shown = 5
	if len(e.Problems) <= shown {
		return fmt.Sprintf("invalid dataset: %s", strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("invalid dataset: %s; and %d more",
		strings.Join(e.Problems[:shown], "; "), len(e.Problems)-shown)
}

// Validate rejects malformed records so the aggregation and filtering code
// can assume well-formed input.
func Validate(records []model.AttackRecord) error {
	var problems []string
	seen := make(map[int64]bool, len(records))

	for i := range records {
		r := &records[i]
		if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("record %d: duplicate id", r.ID))
		}
		seen[r.ID] = true

		if r.Timestamp == "" {
			problems = append(problems, fmt.Sprintf("record %d: missing timestamp", r.ID))
		}
		if r.AttackType == "" {
			problems = append(problems, fmt.Sprintf("record %d: missing attack_type", r.ID))
		}
		if r.Country == "" {
			problems = append(problems, fmt.Sprintf("record %d: missing country", r.ID))
		}
		if !model.IsKnownSeverity(r.Severity) {
			problems = append(problems, fmt.Sprintf("record %d: unknown severity %q", r.ID, r.Severity))
		}
		if r.SeverityScore < model.MinSeverityScore || r.SeverityScore > model.MaxSeverityScore {
			problems = append(problems, fmt.Sprintf("record %d: severity_score %d out of range", r.ID, r.SeverityScore))
		}
		if r.DurationMinutes < 0 {
			problems = append(problems, fmt.Sprintf("record %d: negative duration_minutes", r.ID))
		}
		if r.AffectedUsers < 0 {
			problems = append(problems, fmt.Sprintf("record %d: negative affected_users", r.ID))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Load fetches from src and validates the result. Every failure wraps ErrLoad.
func Load(ctx context.Context, src Source) ([]model.AttackRecord, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, src.Name(), err)
	}
	if err := Validate(records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, src.Name(), err)
	}
	return records, nil
}

// New builds the source described by the dataset config section.
func New(cfg utils.DatasetYAMLConfig, logger *logrus.Logger) (Source, error) {
	var src Source

	switch cfg.Source {
	case "sample", "":
		src = NewSampleSource(cfg.SampleSize, cfg.SampleSeed)
	case "file":
		src = NewFileSource(cfg.Path)
	case "sqlite":
		src = NewSQLiteSource(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}

	if cfg.CacheTTLSeconds > 0 {
		src = NewCachedSource(src, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)
	}

	logger.Infof("Dataset source: %s", src.Name())
	return src, nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
