// Package api provides the localhost HTTP server the presentation layer
// (the browser extension UI) reads its view-models from. The UI never
// mutates engine state directly: everything it can do maps to either a
// cycle run or an identity change.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cfdaily/cfdaily/internal/app/cycle"
	"github.com/cfdaily/cfdaily/internal/app/streak"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/health"
	"github.com/cfdaily/cfdaily/internal/infra/identity"
)

// Server is the cfdaily HTTP API server.
type Server struct {
	orchestrator   *cycle.Orchestrator
	ledger         *streak.Ledger
	identities     *identity.Manager
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates an API server.
func NewServer(o *cycle.Orchestrator, l *streak.Ledger, ids *identity.Manager, checker *health.Checker) *Server {
	return &Server{orchestrator: o, ledger: l, identities: ids, checker: checker}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/daily", s.handleDaily)
		r.Post("/check", s.handleCheck)
		r.Get("/streak", s.handleStreak)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/identity", s.handleIdentityGet)
		r.Post("/identity", s.handleIdentitySet)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware allows the extension's content scripts to call the
// local API from the judge site's origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// guestProfile is the identity view for an unverified session.
func guestProfile() map[string]any {
	return map[string]any{
		"identity": domain.GuestIdentity,
		"verified": false,
	}
}
