package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cyber-dashboard/internal/metrics"
	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/session"
	"cyber-dashboard/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	records []model.AttackRecord
	err     error
}

func (s *fixedSource) Name() string { return "fixed" }

func (s *fixedSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.records, s.err
}

func attack(id int64, attackType, severity, country string, score int) model.AttackRecord {
	return model.AttackRecord{
		ID:            id,
		Timestamp:     "2024-05-01T08:00:00Z",
		AttackType:    attackType,
		Severity:      severity,
		Country:       country,
		SeverityScore: score,
		AffectedUsers: 100,
	}
}

func dataset() []model.AttackRecord {
	return []model.AttackRecord{
		attack(1, "DDoS", "Alto", "MX", 7),
		attack(2, "Ransomware", "Crítico", "US", 9),
		attack(3, "DDoS", "Bajo", "MX", 2),
	}
}

type fixture struct {
	manager *session.Manager
	metrics *metrics.Metrics
	router  http.Handler
	server  *httptest.Server
}

func newFixture(t *testing.T, src *fixedSource, start bool) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := utils.GetDefaultDashboardConfig()
	m := metrics.New()
	manager := session.NewManager(src, session.Options{
		DefaultLimit: cfg.Filters.DefaultLimit,
		MaxLimit:     cfg.Filters.MaxLimit,
	}, logger)
	if start {
		_ = manager.Start(context.Background())
	}

	router := NewRouter(NewHandlers(manager, cfg, logger, m))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{manager: manager, metrics: m, router: router, server: server}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestGetStats(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	code, body := f.do(t, "GET", "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["total_attacks"])
	assert.InDelta(t, 6.0, body["avg_severity_score"], 1e-9)
	assert.EqualValues(t, 300, body["total_affected_users"])
	assert.Equal(t, map[string]interface{}{"DDoS": 2.0, "Ransomware": 1.0}, body["attack_types"])
}

func TestGetCharts(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	code, body := f.do(t, "GET", "/api/v1/charts", "")
	require.Equal(t, http.StatusOK, code)

	types := body["attack_types"].([]interface{})
	require.Len(t, types, 2)
	assert.Equal(t, "DDoS", types[0].(map[string]interface{})["label"])

	severity := body["severity"].([]interface{})
	require.Len(t, severity, 3)
	assert.Equal(t, "Bajo", severity[0].(map[string]interface{})["label"])
}

func TestGetFilterOptions(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	code, body := f.do(t, "GET", "/api/v1/filters", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"DDoS", "Ransomware"}, body["attack_types"])
	assert.Equal(t, []interface{}{"MX", "US"}, body["countries"])
	assert.EqualValues(t, 100, body["default_limit"])
	assert.EqualValues(t, 1000, body["max_limit"])
}

func TestGetAttacks(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	tests := []struct {
		name    string
		query   string
		ids     []float64
		matched int
		limit   int
	}{
		{"no filters", "", []float64{1, 2, 3}, 3, 100},
		{"by type", "?attack_type=DDoS", []float64{1, 3}, 2, 100},
		{"type and country", "?attack_type=DDoS&country=MX&severity=Bajo", []float64{3}, 1, 100},
		{"case sensitive", "?attack_type=ddos", nil, 0, 100},
		{"limit truncates", "?limit=1", []float64{1}, 3, 1},
		{"limit clamped", "?limit=5000", []float64{1, 2, 3}, 3, 1000},
		{"bad limit falls back", "?limit=abc", []float64{1, 2, 3}, 3, 100},
		{"search", "?search=RANSOM", []float64{2}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.do(t, "GET", "/api/v1/attacks"+tt.query, "")
			require.Equal(t, http.StatusOK, code)

			items := body["items"].([]interface{})
			var ids []float64
			for _, item := range items {
				ids = append(ids, item.(map[string]interface{})["id"].(float64))
			}
			assert.Equal(t, tt.ids, ids)
			assert.EqualValues(t, tt.matched, body["matched"])
			assert.EqualValues(t, 3, body["total"])
			assert.EqualValues(t, tt.limit, body["criteria"].(map[string]interface{})["limit"])
		})
	}

	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(f.metrics.FilterEvaluations.WithLabelValues("query")))
}

func TestGetAttack(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	code, body := f.do(t, "GET", "/api/v1/attacks/2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ransomware", body["attack_type"])

	code, _ = f.do(t, "GET", "/api/v1/attacks/42", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, "GET", "/api/v1/attacks/nope", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCriteria(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	code, body := f.do(t, "PUT", "/api/v1/criteria", `{"country":"MX","limit":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["matched"])
	assert.Len(t, body["items"], 1)

	code, body = f.do(t, "GET", "/api/v1/criteria", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "MX", body["country"])
	assert.EqualValues(t, 1, body["limit"])

	code, _ = f.do(t, "PUT", "/api/v1/criteria", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNotReadyWhileLoading(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, false)

	code, body := f.do(t, "GET", "/api/v1/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "loading", body["error"])

	code, body = f.do(t, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "loading", body["status"])
}

func TestFailedLoadShowsGenericMessage(t *testing.T) {
	f := newFixture(t, &fixedSource{err: errors.New("disk on fire")}, true)

	for _, path := range []string{"/api/v1/stats", "/api/v1/charts", "/api/v1/filters", "/api/v1/attacks"} {
		code, body := f.do(t, "GET", path, "")
		assert.Equal(t, http.StatusServiceUnavailable, code, path)
		assert.Equal(t, LoadErrorMessage, body["error"], path)
	}

	code, body := f.do(t, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "failed", body["status"])
}

func TestReload(t *testing.T) {
	src := &fixedSource{records: dataset()}
	f := newFixture(t, src, true)
	first := f.manager.Current().ID()

	src.records = dataset()[:1]
	code, body := f.do(t, "POST", "/api/v1/reload", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, first, body["id"])
	assert.EqualValues(t, 1, body["records"])

	src.err = errors.New("gone")
	code, body = f.do(t, "POST", "/api/v1/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, LoadErrorMessage, body["error"])
}

func TestReloadSurvivesClientCancel(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)
	first := f.manager.Current().ID()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("POST", "/api/v1/reload", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, first, f.manager.Current().ID())
	assert.Equal(t, session.StatusReady, f.manager.Current().Info().Status)

	code, body := f.do(t, "GET", "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["total_attacks"])
}

func TestConcurrentCriteriaUpdatesAnswerOwnSelection(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	countries := []string{"MX", "US", "AR"}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		country := countries[i%len(countries)]
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequest("PUT", f.server.URL+"/api/v1/criteria", strings.NewReader(`{"country":"`+country+`"}`))
			if !assert.NoError(t, err) {
				return
			}
			resp, err := http.DefaultClient.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			var view model.AttackView
			if !assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view)) {
				return
			}
			assert.Equal(t, country, view.Criteria.Country)
			for _, item := range view.Items {
				assert.Equal(t, country, item.Country)
			}
		}()
	}
	wg.Wait()
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, false)

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStreamView(t *testing.T) {
	f := newFixture(t, &fixedSource{records: dataset()}, true)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/stream/view"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "view", msg.Type)
	assert.NotEmpty(t, msg.Client)
	require.NotNil(t, msg.View)
	assert.Equal(t, 3, msg.View.Matched)

	require.NoError(t, conn.WriteJSON(criteriaRequest{AttackType: "DDoS", Severity: "Bajo"}))
	msg = streamMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.NotNil(t, msg.View)
	assert.Equal(t, 1, msg.View.Matched)
	assert.Equal(t, int64(3), msg.View.Items[0].ID)
	assert.Equal(t, "DDoS", f.manager.Current().Criteria().AttackType)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	msg = streamMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StreamClients))
}
