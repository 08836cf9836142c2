// Package calendar imports passenger bookings from Google Calendar events.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/models"
)

// ErrNotConfigured is returned when no calendar credentials are available
var ErrNotConfigured = errors.New("calendar import not configured")

// DefaultLookAhead is the window searched when the caller gives no end time
const DefaultLookAhead = 30 * 24 * time.Hour

// Config selects the calendar and its credentials
type Config struct {
	CalendarID  string
	AccessToken string
}

// Event is a booking with the passengers listed in its description
type Event struct {
	ID         string             `json:"id"`
	Summary    string             `json:"summary"`
	Start      string             `json:"start"`
	Passengers []models.Passenger `json:"passengers"`
}

// Importer lists calendar events and parses their passenger lists
type Importer struct {
	svc        *gcal.Service
	calendarID string
}

// New creates an importer. Extra client options are applied after the credentials.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Importer, error) {
	if cfg.AccessToken == "" && len(opts) == 0 {
		return nil, ErrNotConfigured
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}

	var clientOpts []option.ClientOption
	if cfg.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Importer{svc: svc, calendarID: cfg.CalendarID}, nil
}

// Events returns the single events starting between from and to, ordered by start time.
// A zero to searches DefaultLookAhead past from.
func (i *Importer) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	if to.IsZero() {
		to = from.Add(DefaultLookAhead)
	}

	events := []Event{}
	call := i.svc.Events.List(i.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, toEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	return events, nil
}

func toEvent(item *gcal.Event) Event {
	ev := Event{
		ID:         item.Id,
		Summary:    item.Summary,
		Passengers: flightplan.ParsePassengers(item.Description),
	}
	if item.Start != nil {
		ev.Start = item.Start.DateTime
		if ev.Start == "" {
			ev.Start = item.Start.Date
		}
	}
	return ev
}
