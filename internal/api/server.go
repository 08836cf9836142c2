// Package api exposes the flight plan service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"balloon_ofp/internal/calendar"
	"balloon_ofp/internal/catalog"
	"balloon_ofp/internal/database"
	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/models"
	"balloon_ofp/internal/weather"
)

const maxBodyBytes = 1 << 20

// Enqueuer hands saved records to the notification pipeline
type Enqueuer interface {
	Enqueue(rec *models.FlightPlanRecord) bool
}

// EventLister lists calendar bookings
type EventLister interface {
	Events(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// Deps holds everything the server reads from or writes to.
// Weather, Calendar and Notifications may be nil.
type Deps struct {
	Aircraft      *catalog.AircraftCatalog
	Pilots        *catalog.PilotRegistry
	Assembler     *flightplan.Assembler
	Repository    database.FlightPlanRepository
	Notifications Enqueuer
	Weather       weather.Source
	LatestWeather *weather.Latest
	WeatherMaxAge time.Duration
	Calendar      EventLister
}

// Server provides the REST API
type Server struct {
	deps Deps
	now  func() time.Time
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	if deps.LatestWeather == nil {
		deps.LatestWeather = &weather.Latest{}
	}
	if deps.WeatherMaxAge <= 0 {
		deps.WeatherMaxAge = 30 * time.Minute
	}
	return &Server{deps: deps, now: time.Now}
}

// Router returns the configured chi router
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/aircraft", s.handleListAircraft)
		r.Get("/aircraft/{registration}", s.handleGetAircraft)

		r.Get("/pilots", s.handleListPilots)
		r.Get("/pilots/{id}", s.handleGetPilot)

		r.Get("/weather", s.handleWeather)

		r.Post("/passengers/import", s.handleImportPassengers)
		r.Get("/calendar/events", s.handleCalendarEvents)

		r.Post("/flight-plans/evaluate", s.handleEvaluate)
		r.Post("/flight-plans/summary", s.handlePreviewSummary)
		r.Post("/flight-plans", s.handleSubmit)
		r.Get("/flight-plans", s.handleListFlightPlans)
		r.Get("/flight-plans/{id}", s.handleGetFlightPlan)
		r.Get("/flight-plans/{id}/summary", s.handleSummary)
	})

	return r
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// Helper functions.

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
