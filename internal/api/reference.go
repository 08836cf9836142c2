package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"balloon_ofp/internal/catalog"
	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/models"
)

// PilotResponse is a roster entry with its document status
type PilotResponse struct {
	models.Pilot
	Validation catalog.PilotValidation `json:"validation"`
}

func (s *Server) handleListAircraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Aircraft.All())
}

func (s *Server) handleGetAircraft(w http.ResponseWriter, r *http.Request) {
	ac, ok := s.deps.Aircraft.Lookup(chi.URLParam(r, "registration"))
	if !ok {
		writeError(w, http.StatusNotFound, "aircraft not found")
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

func (s *Server) handleListPilots(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	pilots := s.deps.Pilots.All()
	out := make([]PilotResponse, 0, len(pilots))
	for _, p := range pilots {
		out = append(out, PilotResponse{Pilot: p, Validation: s.deps.Pilots.Validate(p, now)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPilot(w http.ResponseWriter, r *http.Request) {
	p, ok := s.deps.Pilots.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "pilot not found")
		return
	}
	writeJSON(w, http.StatusOK, PilotResponse{Pilot: p, Validation: s.deps.Pilots.Validate(p, s.now())})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.deps.Weather == nil {
		if sample, ok := s.deps.LatestWeather.Get(); ok {
			writeJSON(w, http.StatusOK, sample)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "weather data unavailable")
		return
	}

	sample, err := s.deps.LatestWeather.Fresh(r.Context(), s.deps.Weather, s.deps.WeatherMaxAge, s.now())
	if err != nil {
		slog.Warn("Weather fetch failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "weather data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) handleImportPassengers(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"passengers": flightplan.ParsePassengers(string(body)),
	})
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Calendar == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar import not configured")
		return
	}

	from, err := parseTimeParam(r, "from", s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: use RFC 3339 or YYYY-MM-DD")
		return
	}
	to, err := parseTimeParam(r, "to", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: use RFC 3339 or YYYY-MM-DD")
		return
	}
	if !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	events, err := s.deps.Calendar.Events(r.Context(), from, to)
	if err != nil {
		slog.Error("Calendar import failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch calendar events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

var errBadTime = errors.New("bad time")

func parseTimeParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(models.DateLayout, v); err == nil {
		return t, nil
	}
	return time.Time{}, errBadTime
}
