package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/cycle"
	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/domain"
)

// handleHealth reports process health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	status := http.StatusOK
	overall := "ok"
	if !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": s.checker.Statuses(),
	})
}

// handleDaily returns today's view-model, running a full cycle so the
// selection, solve flags and streaks are current.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	vm := s.orchestrator.RunCycle(r.Context(), cycle.TriggerManual)
	writeJSON(w, http.StatusOK, vm)
}

// handleCheck forces a reconciliation pass and returns the refreshed
// view-model. Same work as /api/daily but POST, for the UI's explicit
// "check now" button.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	vm := s.orchestrator.RunCycle(r.Context(), cycle.TriggerManual)
	writeJSON(w, http.StatusOK, vm)
}

// handleStreak returns the current streak state without touching the
// remote judge. Streaks are re-derived from the ledger as of today so a
// missed day shows as zero even before the next cycle runs.
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	id := s.identities.Current()
	state := s.ledger.Refresh(id, daykey.Today())
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": id,
		"streak":   state,
	})
}

// handleCalendar returns the month view-model. Accepts ?month=YYYY-MM,
// defaulting to the current month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	cal := s.ledger.Calendar(s.identities.Current(), month)
	writeJSON(w, http.StatusOK, cal)
}

// handleIdentityGet returns the active identity and its cached profile.
func (s *Server) handleIdentityGet(w http.ResponseWriter, r *http.Request) {
	id := s.identities.Current()
	if id == domain.GuestIdentity {
		writeJSON(w, http.StatusOK, guestProfile())
		return
	}
	profile := s.identities.Profile(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": id,
		"verified": true,
		"rating":   profile.Rating,
		"rank":     profile.Rank,
	})
}

// handleIdentitySet switches the active identity. An empty handle
// switches to guest mode. The handle is verified against the judge
// before the switch takes effect.
func (s *Server) handleIdentitySet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.identities.SetCurrent(r.Context(), req.Handle)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			writeError(w, http.StatusBadGateway, "judge unreachable, identity unchanged")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result == domain.GuestIdentity {
		writeJSON(w, http.StatusOK, guestProfile())
		return
	}
	profile := s.identities.Profile(result)
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": result,
		"verified": true,
		"rating":   profile.Rating,
		"rank":     profile.Rank,
	})
}
