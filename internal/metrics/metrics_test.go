package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cyber-dashboard/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStats(t *testing.T) {
	m := New()
	m.ObserveStats(model.AttackStats{
		TotalAttacks:         3,
		SeverityDistribution: map[string]int{"Alto": 2, "Bajo": 1},
		TotalAffectedUsers:   640,
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.DatasetRecords))
	assert.Equal(t, 640.0, testutil.ToFloat64(m.AffectedUsers))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttacksBySeverity.WithLabelValues("Alto")))

	m.ObserveStats(model.AttackStats{SeverityDistribution: map[string]int{"Medio": 4}})
	assert.Equal(t, 1, testutil.CollectAndCount(m.AttacksBySeverity))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DatasetRecords))
}

func TestRecordLoadAndFilter(t *testing.T) {
	m := New()
	m.RecordLoad(true, 0.2)
	m.RecordLoad(false, 0.1)
	m.RecordLoad(false, 0.1)
	m.RecordFilter("api", 12)
	m.RecordFilter("", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterEvaluations.WithLabelValues("unknown")))
}

func TestInstrumentHandler(t *testing.T) {
	m := New()
	h := m.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("418", "get")))
}

func TestExporterHandler(t *testing.T) {
	m := New()
	m.DatasetRecords.Set(42)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := NewExporter("0", m, logger)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_dataset_records 42")
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))

	rec = httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "OK", rec.Body.String())
}
