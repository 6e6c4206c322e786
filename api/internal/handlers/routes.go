package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every dashboard route onto a mux router.
func NewRouter(h *Handlers) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	// Dataset endpoints
	api.HandleFunc("/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/reload", h.Reload).Methods("POST")

	// Summary endpoints
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/charts", h.GetCharts).Methods("GET")
	api.HandleFunc("/filters", h.GetFilterOptions).Methods("GET")

	// Table endpoints
	api.HandleFunc("/attacks", h.GetAttacks).Methods("GET")
	api.HandleFunc("/attacks/{id}", h.GetAttack).Methods("GET")
	api.HandleFunc("/criteria", h.GetCriteria).Methods("GET")
	api.HandleFunc("/criteria", h.UpdateCriteria).Methods("PUT")
	api.HandleFunc("/stream/view", h.StreamView).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	return router
}
