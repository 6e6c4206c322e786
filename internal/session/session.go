package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"cyber-dashboard/internal/filter"
	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/source"
	"cyber-dashboard/internal/stats"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ErrNotReady is returned by every read while the initial load is pending.
var ErrNotReady = errors.New("dataset is still loading")

// Options bound the criteria a session accepts.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Info describes a session for status endpoints.
type Info struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Status   Status    `json:"status"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Session owns one dataset load: the immutable records, the statistics
// computed once from them, and the user's current criteria. Views are
// re-derived from this state on every request.
type Session struct {
	id     string
	src    source.Source
	opts   Options
	logger *logrus.Logger

	loadOnce sync.Once

	mu       sync.RWMutex
	status   Status
	records  []model.AttackRecord
	stats    model.AttackStats
	options  stats.FilterOptions
	criteria model.FilterCriteria
	loadedAt time.Time
	loadErr  error
}

func NewSession(src source.Source, opts Options, logger *logrus.Logger) *Session {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = model.DefaultLimit
	}
	criteria := model.DefaultCriteria()
	criteria.Limit = opts.DefaultLimit

	return &Session{
		id:       uuid.NewString(),
		src:      src,
		opts:     opts,
		logger:   logger,
		status:   StatusLoading,
		criteria: criteria.Normalized(opts.MaxLimit),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load fetches the dataset and computes its statistics. Only the first call
// does any work; later calls return the first outcome. A failed load is final.
func (s *Session) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.logger.Infof("Loading dataset from %s (session %s)", s.src.Name(), s.id)

		records, err := source.Load(ctx, s.src)

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			s.status = StatusFailed
			s.loadErr = err
			s.logger.Errorf("Error loading data: %v", err)
			return
		}

		s.records = records
		s.stats = stats.Aggregate(records)
		s.options = stats.DistinctValues(records)
		s.loadedAt = time.Now()
		s.status = StatusReady
		s.logger.Infof("Dataset loaded successfully: %d records", len(records))
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		ID:       s.id,
		Source:   s.src.Name(),
		Status:   s.status,
		Records:  len(s.records),
		LoadedAt: s.loadedAt,
	}
	if s.loadErr != nil {
		info.Error = s.loadErr.Error()
	}
	return info
}

// readyLocked reports why the session cannot serve reads. Callers hold mu.
func (s *Session) readyLocked() error {
	switch s.status {
	case StatusLoading:
		return ErrNotReady
	case StatusFailed:
		return s.loadErr
	}
	return nil
}

func (s *Session) Stats() (model.AttackStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return model.AttackStats{}, err
	}
	return s.stats, nil
}

func (s *Session) Options() (stats.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return stats.FilterOptions{}, err
	}
	return s.options, nil
}

// Records returns the full dataset. The slice is shared and must not be modified.
func (s *Session) Records() ([]model.AttackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	return s.records, nil
}

// Record looks a record up by id.
func (s *Session) Record(id int64) (model.AttackRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return model.AttackRecord{}, false, err
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i], true, nil
		}
	}
	return model.AttackRecord{}, false, nil
}

// NormalizeCriteria applies the session's default and maximum limit.
func (s *Session) NormalizeCriteria(c model.FilterCriteria) model.FilterCriteria {
	if c.Limit < 1 {
		c.Limit = s.opts.DefaultLimit
	}
	return c.Normalized(s.opts.MaxLimit)
}

// View filters the dataset with c and search without touching the stored criteria.
func (s *Session) View(c model.FilterCriteria, search string) (model.AttackView, error) {
	c = s.NormalizeCriteria(c)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return model.AttackView{}, err
	}
	return filter.Apply(s.records, c, search), nil
}

func (s *Session) Criteria() model.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// SetCriteria replaces the current selection and returns it normalized.
func (s *Session) SetCriteria(c model.FilterCriteria) model.FilterCriteria {
	c = s.NormalizeCriteria(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	return c
}

// CurrentView filters with the stored criteria.
func (s *Session) CurrentView(search string) (model.AttackView, error) {
	return s.View(s.Criteria(), search)
}
