package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/source"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubSource struct {
	mu      sync.Mutex
	calls   int
	records []model.AttackRecord
	err     error
	gate    chan struct{}
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func record(id int64, attackType, severity, country string) model.AttackRecord {
	return model.AttackRecord{
		ID:            id,
		Timestamp:     "2024-05-01T08:00:00Z",
		AttackType:    attackType,
		Severity:      severity,
		Country:       country,
		SeverityScore: 5,
		AffectedUsers: 10,
	}
}

func scenario() []model.AttackRecord {
	return []model.AttackRecord{
		record(1, "DDoS", "Alto", "MX"),
		record(2, "Ransomware", "Crítico", "US"),
		record(3, "DDoS", "Bajo", "MX"),
	}
}

func TestSessionLifecycle(t *testing.T) {
	src := &stubSource{records: scenario()}
	s := NewSession(src, Options{DefaultLimit: 100, MaxLimit: 1000}, quietLogger())

	assert.Equal(t, StatusLoading, s.Info().Status)
	_, err := s.Stats()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.View(model.FilterCriteria{}, "")
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, s.Load(context.Background()))
	info := s.Info()
	assert.Equal(t, StatusReady, info.Status)
	assert.Equal(t, 3, info.Records)
	assert.NotEmpty(t, info.ID)
	assert.False(t, info.LoadedAt.IsZero())

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalAttacks)
	assert.Equal(t, map[string]int{"DDoS": 2, "Ransomware": 1}, st.AttackTypes)

	opts, err := s.Options()
	require.NoError(t, err)
	assert.Equal(t, []string{"MX", "US"}, opts.Countries)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, src.calls, "a session loads once")
}

func TestSessionFailedLoadIsTerminal(t *testing.T) {
	src := &stubSource{err: errors.New("network down")}
	s := NewSession(src, Options{}, quietLogger())

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, source.ErrLoad)
	assert.Equal(t, StatusFailed, s.Info().Status)
	assert.Contains(t, s.Info().Error, "network down")

	src.err = nil
	src.records = scenario()
	assert.ErrorIs(t, s.Load(context.Background()), source.ErrLoad)
	assert.Equal(t, 1, src.calls, "no retry after failure")

	_, err = s.Stats()
	assert.ErrorIs(t, err, source.ErrLoad)
}

func TestSessionRejectsMalformedDataset(t *testing.T) {
	bad := scenario()
	bad[1].ID = 1
	s := NewSession(&stubSource{records: bad}, Options{}, quietLogger())

	err := s.Load(context.Background())
	var verr *source.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusFailed, s.Info().Status)
}

func TestSessionViews(t *testing.T) {
	s := NewSession(&stubSource{records: scenario()}, Options{DefaultLimit: 2, MaxLimit: 10}, quietLogger())
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, 2, s.Criteria().Limit)

	view, err := s.CurrentView("")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Matched)

	applied := s.SetCriteria(model.FilterCriteria{AttackType: "DDoS", Limit: 500})
	assert.Equal(t, 10, applied.Limit)
	view, err = s.CurrentView("")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Matched)
	assert.Equal(t, int64(1), view.Items[0].ID)
	assert.Equal(t, int64(3), view.Items[1].ID)

	view, err = s.CurrentView("bajo")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Matched)

	view, err = s.View(model.FilterCriteria{AttackType: "DDoS", Country: "US"}, "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, "DDoS", s.Criteria().AttackType, "View leaves stored criteria alone")

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalAttacks, "stats always describe the full dataset")

	r, ok, err := s.Record(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ransomware", r.AttackType)
	_, ok, err = s.Record(99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionEmptyDataset(t *testing.T) {
	s := NewSession(&stubSource{records: []model.AttackRecord{}}, Options{}, quietLogger())
	require.NoError(t, s.Load(context.Background()))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.TotalAttacks)
	assert.Zero(t, st.AvgSeverityScore)

	view, err := s.View(model.FilterCriteria{AttackType: "DDoS"}, "x")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestManagerReloadSwapsAfterLoad(t *testing.T) {
	src := &stubSource{records: scenario()}
	m := NewManager(src, Options{DefaultLimit: 100}, quietLogger())

	var mu sync.Mutex
	var seen []Info
	m.AddObserver(func(info Info, st model.AttackStats, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, info)
	})

	require.NoError(t, m.Start(context.Background()))
	first := m.Current()
	first.SetCriteria(model.FilterCriteria{Country: "MX"})

	src.gate = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := m.Reload(context.Background())
		assert.NoError(t, err)
	}()

	// While the reload is blocked the old session keeps serving.
	assert.Same(t, first, m.Current())
	close(src.gate)
	<-done

	second := m.Current()
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, StatusReady, second.Info().Status)
	assert.Equal(t, "", second.Criteria().Country, "a fresh session starts with default criteria")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, StatusReady, seen[1].Status)
}

func TestManagerReloadFailure(t *testing.T) {
	src := &stubSource{records: scenario()}
	m := NewManager(src, Options{}, quietLogger())
	require.NoError(t, m.Start(context.Background()))

	src.err = errors.New("gone")
	s, err := m.Reload(context.Background())
	assert.ErrorIs(t, err, source.ErrLoad)
	assert.Same(t, s, m.Current())
	assert.Equal(t, StatusFailed, m.Current().Info().Status)
}

func TestManagerReloadFreshBypassesCache(t *testing.T) {
	inner := &stubSource{records: scenario()}
	cached := source.NewCachedSource(inner, time.Hour, quietLogger())
	m := NewManager(cached, Options{}, quietLogger())
	require.NoError(t, m.Start(context.Background()))

	_, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	_, err = m.ReloadFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
