package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a database backend holding flight plan records
type Store interface {
	FlightPlanRepository() FlightPlanRepository
	Close() error
}

// DB is a SQLite store for flight plan records
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite applies the pragmas used for a small single-writer deployment
func optimizeSQLite(db *sql.DB) error {
	pragmas := []struct {
		stmt string
		what string
	}{
		// WAL lets the API read while the notification dispatcher writes
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA synchronous=NORMAL", "set synchronous mode"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			return fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// FlightPlanRepository returns the flight plan repository backed by this database
func (d *DB) FlightPlanRepository() FlightPlanRepository {
	return NewFlightPlanRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	flightPlansSchema := `CREATE TABLE IF NOT EXISTS flight_plans (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		flight_date TEXT NOT NULL,
		pilot_name TEXT NOT NULL,
		aircraft_registration TEXT NOT NULL,
		total_passenger_weight_kg REAL NOT NULL,
		fuel_reserve_minutes INTEGER NOT NULL,
		fuel_reserve_sufficient BOOLEAN NOT NULL,
		status TEXT NOT NULL,
		plan TEXT NOT NULL,
		metrics TEXT NOT NULL,
		pilot_warnings TEXT,
		email_sent_at TIMESTAMP
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_created_at ON flight_plans(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_flight_date ON flight_plans(flight_date)`,
	}

	if _, err := d.db.Exec(flightPlansSchema); err != nil {
		return fmt.Errorf("failed to create flight_plans table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
