package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"balloon_ofp/internal/models"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// PostgresDB is a PostgreSQL store for flight plan records.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL and creates the schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	d := &PostgresDB{pool: pool}
	if err := d.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return d, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() error {
	d.pool.Close()
	return nil
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flight_plans (
		id                          UUID PRIMARY KEY,
		created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		flight_date                 TEXT NOT NULL,
		pilot_name                  TEXT NOT NULL,
		aircraft_registration       TEXT NOT NULL,
		total_passenger_weight_kg   DOUBLE PRECISION NOT NULL,
		fuel_reserve_minutes        INTEGER NOT NULL,
		fuel_reserve_sufficient     BOOLEAN NOT NULL,
		status                      TEXT NOT NULL,
		plan                        JSONB NOT NULL,
		metrics                     JSONB NOT NULL,
		pilot_warnings              JSONB,
		email_sent_at               TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_flight_plans_created_at ON flight_plans(created_at);
	CREATE INDEX IF NOT EXISTS idx_flight_plans_flight_date ON flight_plans(flight_date);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// FlightPlanRepository returns the flight plan repository backed by this pool.
func (d *PostgresDB) FlightPlanRepository() FlightPlanRepository {
	return &postgresFlightPlanRepository{pool: d.pool}
}

type postgresFlightPlanRepository struct {
	pool *pgxpool.Pool
}

func (r *postgresFlightPlanRepository) Save(ctx context.Context, rec *models.FlightPlanRecord) (string, error) {
	row, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO flight_plans (
			id, created_at, flight_date, pilot_name, aircraft_registration,
			total_passenger_weight_kg, fuel_reserve_minutes, fuel_reserve_sufficient,
			status, plan, metrics, pilot_warnings, email_sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, row.id, row.createdAt, rec.Plan.FlightDate, rec.Plan.PilotName, rec.Plan.AircraftRegistration,
		rec.Metrics.TotalPassengerWeightKg, rec.Metrics.FuelReserveMinutes, rec.Metrics.FuelReserveSufficient,
		rec.Status, row.plan, row.metrics, row.warnings, rec.EmailSentAt)
	if err != nil {
		return "", fmt.Errorf("insert flight plan: %w", err)
	}

	rec.ID = row.id
	rec.CreatedAt = row.createdAt
	return row.id, nil
}

func (r *postgresFlightPlanRepository) Get(ctx context.Context, id string) (*models.FlightPlanRecord, error) {
	rec, err := scanPostgresRecord(r.pool.QueryRow(ctx, `
		SELECT id::text, created_at, status, plan, metrics, pilot_warnings, email_sent_at
		FROM flight_plans WHERE id::text = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight plan: %w", err)
	}
	return rec, nil
}

func (r *postgresFlightPlanRepository) List(ctx context.Context, limit int) ([]*models.FlightPlanRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, created_at, status, plan, metrics, pilot_warnings, email_sent_at
		FROM flight_plans ORDER BY created_at DESC, id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list flight plans: %w", err)
	}
	defer rows.Close()

	var out []*models.FlightPlanRecord
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight plan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flight plans: %w", err)
	}

	return out, nil
}

func (r *postgresFlightPlanRepository) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE flight_plans SET email_sent_at = $1 WHERE id::text = $2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresRecord(row pgx.Row) (*models.FlightPlanRecord, error) {
	var (
		rec       models.FlightPlanRecord
		plan      []byte
		metrics   []byte
		warnings  []byte
		emailSent *time.Time
	)

	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.Status, &plan, &metrics, &warnings, &emailSent); err != nil {
		return nil, err
	}
	if err := decodeRecord(&rec, plan, metrics, warnings); err != nil {
		return nil, err
	}
	if emailSent != nil {
		t := emailSent.UTC()
		rec.EmailSentAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
