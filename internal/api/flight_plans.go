package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"balloon_ofp/internal/compliance"
	"balloon_ofp/internal/database"
	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/models"
)

// RejectionResponse lists every reason a plan was refused
type RejectionResponse struct {
	Error      string                   `json:"error"`
	Structural []compliance.FieldError  `json:"structural,omitempty"`
	Gates      []compliance.GateFailure `json:"gates,omitempty"`
}

// SubmitResponse is returned for an accepted plan
type SubmitResponse struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Notified bool     `json:"notification_queued"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var plan models.FlightPlan
	if !decodeJSON(w, r, &plan) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Assembler.Evaluate(plan, s.now()))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var plan models.FlightPlan
	if !decodeJSON(w, r, &plan) {
		return
	}

	rec, err := s.deps.Assembler.Assemble(plan, s.now())
	var rejected *flightplan.RejectionError
	if errors.As(err, &rejected) {
		writeJSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error:      "flight plan rejected",
			Structural: rejected.Result.Structural,
			Gates:      rejected.Result.Gates,
		})
		return
	}
	if err != nil {
		slog.Error("Failed to assemble flight plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble flight plan")
		return
	}

	id, err := s.deps.Repository.Save(r.Context(), rec)
	if err != nil {
		slog.Error("Failed to save flight plan", "pilot", rec.Plan.PilotName, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save flight plan")
		return
	}

	queued := false
	if s.deps.Notifications != nil {
		queued = s.deps.Notifications.Enqueue(rec)
	}

	slog.Info("Flight plan submitted",
		"id", id,
		"pilot", rec.Plan.PilotName,
		"aircraft", rec.Plan.AircraftRegistration,
		"flight_date", rec.Plan.FlightDate,
		"warnings", len(rec.PilotWarnings),
	)

	writeJSON(w, http.StatusCreated, SubmitResponse{
		ID:       id,
		Status:   rec.Status,
		Warnings: rec.PilotWarnings,
		Notified: queued,
	})
}

func (s *Server) handleListFlightPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.deps.Repository.List(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list flight plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list flight plans")
		return
	}
	if recs == nil {
		recs = []*models.FlightPlanRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetFlightPlan(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, flightplan.RenderSummary(rec))
}

// handlePreviewSummary renders a plan that has not been submitted.
// The plan need not pass validation.
func (s *Server) handlePreviewSummary(w http.ResponseWriter, r *http.Request) {
	var plan models.FlightPlan
	if !decodeJSON(w, r, &plan) {
		return
	}

	now := s.now()
	as := s.deps.Assembler.Evaluate(plan, now)
	rec := &models.FlightPlanRecord{
		Plan:          plan,
		Metrics:       as.Metrics,
		PilotWarnings: as.Warnings,
		CreatedAt:     now,
	}
	if rec.Plan.AircraftType == "" && as.Aircraft != nil {
		rec.Plan.AircraftType = as.Aircraft.Model
	}
	writeText(w, http.StatusOK, flightplan.RenderSummary(rec))
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*models.FlightPlanRecord, bool) {
	rec, err := s.deps.Repository.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "flight plan not found")
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to get flight plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get flight plan")
		return nil, false
	}
	return rec, true
}
