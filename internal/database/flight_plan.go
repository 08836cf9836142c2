package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"balloon_ofp/internal/models"
)

// ErrNotFound is returned when no record matches the requested ID
var ErrNotFound = errors.New("flight plan not found")

// DefaultListLimit caps List when the caller passes no limit
const DefaultListLimit = 50

// FlightPlanRepository stores accepted flight plans
type FlightPlanRepository interface {
	// Save assigns an ID when the record has none, persists it and returns the ID
	Save(ctx context.Context, rec *models.FlightPlanRecord) (string, error)
	Get(ctx context.Context, id string) (*models.FlightPlanRecord, error)
	// List returns the most recent records first
	List(ctx context.Context, limit int) ([]*models.FlightPlanRecord, error)
	MarkEmailSent(ctx context.Context, id string, at time.Time) error
}

type flightPlanRepository struct {
	db *sql.DB
}

// NewFlightPlanRepository creates a repository over a SQLite connection
func NewFlightPlanRepository(db *sql.DB) FlightPlanRepository {
	return &flightPlanRepository{db: db}
}

func (r *flightPlanRepository) Save(ctx context.Context, rec *models.FlightPlanRecord) (string, error) {
	row, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO flight_plans (
		id, created_at, flight_date, pilot_name, aircraft_registration,
		total_passenger_weight_kg, fuel_reserve_minutes, fuel_reserve_sufficient,
		status, plan, metrics, pilot_warnings, email_sent_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.createdAt, rec.Plan.FlightDate, rec.Plan.PilotName, rec.Plan.AircraftRegistration,
		rec.Metrics.TotalPassengerWeightKg, rec.Metrics.FuelReserveMinutes, rec.Metrics.FuelReserveSufficient,
		rec.Status, string(row.plan), string(row.metrics), string(row.warnings), rec.EmailSentAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert flight plan: %w", err)
	}

	rec.ID = row.id
	rec.CreatedAt = row.createdAt
	return row.id, nil
}

func (r *flightPlanRepository) Get(ctx context.Context, id string) (*models.FlightPlanRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, created_at, status, plan, metrics, pilot_warnings, email_sent_at
		FROM flight_plans WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight plan: %w", err)
	}
	return rec, nil
}

func (r *flightPlanRepository) List(ctx context.Context, limit int) ([]*models.FlightPlanRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, created_at, status, plan, metrics, pilot_warnings, email_sent_at
		FROM flight_plans ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list flight plans: %w", err)
	}
	defer rows.Close()

	var out []*models.FlightPlanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight plan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flight plans: %w", err)
	}

	return out, nil
}

func (r *flightPlanRepository) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE flight_plans SET email_sent_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type encodedRecord struct {
	id        string
	createdAt time.Time
	plan      []byte
	metrics   []byte
	warnings  []byte
}

// encodeRecord prepares the JSON columns shared by every backend
func encodeRecord(rec *models.FlightPlanRecord) (encodedRecord, error) {
	out := encodedRecord{id: rec.ID, createdAt: rec.CreatedAt.UTC()}
	if out.id == "" {
		out.id = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		out.createdAt = time.Now().UTC()
	}

	var err error
	if out.plan, err = json.Marshal(rec.Plan); err != nil {
		return out, fmt.Errorf("failed to encode plan: %w", err)
	}
	if out.metrics, err = json.Marshal(rec.Metrics); err != nil {
		return out, fmt.Errorf("failed to encode metrics: %w", err)
	}
	if out.warnings, err = json.Marshal(rec.PilotWarnings); err != nil {
		return out, fmt.Errorf("failed to encode pilot warnings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*models.FlightPlanRecord, error) {
	var (
		rec       models.FlightPlanRecord
		plan      []byte
		metrics   []byte
		warnings  []byte
		emailSent sql.NullTime
	)

	if err := s.Scan(&rec.ID, &rec.CreatedAt, &rec.Status, &plan, &metrics, &warnings, &emailSent); err != nil {
		return nil, err
	}
	if err := decodeRecord(&rec, plan, metrics, warnings); err != nil {
		return nil, err
	}
	if emailSent.Valid {
		t := emailSent.Time.UTC()
		rec.EmailSentAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func decodeRecord(rec *models.FlightPlanRecord, plan, metrics, warnings []byte) error {
	if err := json.Unmarshal(plan, &rec.Plan); err != nil {
		return fmt.Errorf("failed to decode plan: %w", err)
	}
	if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
		return fmt.Errorf("failed to decode metrics: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &rec.PilotWarnings); err != nil {
			return fmt.Errorf("failed to decode pilot warnings: %w", err)
		}
	}
	return nil
}
