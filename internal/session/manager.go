package session

import (
	"context"
	"sync"
	"time"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/source"

	"github.com/sirupsen/logrus"
)

// Observer is told about every finished load, successful or not.
type Observer func(info Info, s model.AttackStats, elapsed time.Duration)

// Manager holds the current session. A reload builds a new session and swaps
// it in once its load has finished, so readers never see a partial dataset.
type Manager struct {
	src    source.Source
	opts   Options
	logger *logrus.Logger

	mu        sync.RWMutex
	current   *Session
	observers []Observer

	reloadMu sync.Mutex
}

func NewManager(src source.Source, opts Options, logger *logrus.Logger) *Manager {
	return &Manager{
		src:     src,
		opts:    opts,
		logger:  logger,
		current: NewSession(src, opts, logger),
	}
}

func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Start performs the initial load of the current session.
func (m *Manager) Start(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	s := m.Current()
	return m.load(ctx, s)
}

// Reload starts a fresh session from the source and makes it current. The
// new session replaces the old one even when its load fails.
func (m *Manager) Reload(ctx context.Context) (*Session, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	s := NewSession(m.src, m.opts, m.logger)
	err := m.load(ctx, s)

	m.mu.Lock()
	previous := m.current
	m.current = s
	m.mu.Unlock()

	m.logger.Infof("Session %s replaced by %s (%s)", previous.ID(), s.ID(), s.Info().Status)
	return s, err
}

// ReloadFresh drops any cached dataset before reloading.
func (m *Manager) ReloadFresh(ctx context.Context) (*Session, error) {
	source.Invalidate(m.src)
	return m.Reload(ctx)
}

func (m *Manager) load(ctx context.Context, s *Session) error {
	start := time.Now()
	err := s.Load(ctx)
	elapsed := time.Since(start)

	st, _ := s.Stats()
	info := s.Info()

	m.mu.RLock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.RUnlock()

	for _, o := range observers {
		o(info, st, elapsed)
	}
	return err
}
