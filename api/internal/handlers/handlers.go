package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cyber-dashboard/internal/metrics"
	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/session"
	"cyber-dashboard/internal/source"
	"cyber-dashboard/internal/stats"
	"cyber-dashboard/internal/utils"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// LoadErrorMessage is the user-facing text for a failed dataset load.
const LoadErrorMessage = "Error al cargar los datos"

type Handlers struct {
	manager  *session.Manager
	config   *utils.DashboardConfig
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewHandlers(manager *session.Manager, config *utils.DashboardConfig, logger *logrus.Logger, m *metrics.Metrics) *Handlers {
	return &Handlers{
		manager: manager,
		config:  config,
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				logger.Debugf("WebSocket origin check: %s", origin)
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// criteriaRequest is the body of PUT /criteria and of every stream message.
type criteriaRequest struct {
	AttackType string `json:"attack_type"`
	Severity   string `json:"severity"`
	Country    string `json:"country"`
	Limit      int    `json:"limit"`
	Search     string `json:"search"`
}

func (c criteriaRequest) criteria() model.FilterCriteria {
	return model.FilterCriteria{
		AttackType: c.AttackType,
		Severity:   c.Severity,
		Country:    c.Country,
		Limit:      c.Limit,
	}
}

func criteriaFromQuery(r *http.Request) (model.FilterCriteria, string) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return model.FilterCriteria{
		AttackType: q.Get("attack_type"),
		Severity:   q.Get("severity"),
		Country:    q.Get("country"),
		Limit:      limit,
	}, q.Get("search")
}

// Status handlers
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Current().Info())
}

func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	// The load outlives the request.
	s, err := h.manager.Reload(context.WithoutCancel(r.Context()))
	if err != nil {
		h.logger.Warnf("Reload failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":   LoadErrorMessage,
			"session": s.Info(),
		})
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

// Stats handlers
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.manager.Current().Stats()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) GetCharts(w http.ResponseWriter, r *http.Request) {
	st, err := h.manager.Current().Stats()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.BuildCharts(st, h.config.Filters.TopAttackTypes, h.config.Filters.TopCountries))
}

func (h *Handlers) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.manager.Current().Options()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attack_types":  opts.AttackTypes,
		"severities":    opts.Severities,
		"countries":     opts.Countries,
		"default_limit": h.config.Filters.DefaultLimit,
		"max_limit":     h.config.Filters.MaxLimit,
	})
}

// Attack handlers
func (h *Handlers) GetAttacks(w http.ResponseWriter, r *http.Request) {
	criteria, search := criteriaFromQuery(r)

	view, err := h.manager.Current().View(criteria, search)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.metrics.RecordFilter("query", view.Matched)

	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetAttack(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attack id")
		return
	}

	record, ok, err := h.manager.Current().Record(id)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Attack not found")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Criteria handlers
func (h *Handlers) GetCriteria(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Current().Criteria())
}

func (h *Handlers) UpdateCriteria(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s := h.manager.Current()
	applied := s.SetCriteria(req.criteria())

	view, err := s.View(applied, req.Search)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.metrics.RecordFilter("criteria", view.Matched)

	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "loading")
	case errors.Is(err, source.ErrLoad):
		writeError(w, http.StatusServiceUnavailable, LoadErrorMessage)
	default:
		h.logger.Errorf("Unexpected session error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
