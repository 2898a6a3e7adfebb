package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open initializes and returns a SQLite connection, creating the parent
// directory if needed. Use ":memory:" for tests.
func Open(dbPath string) (*sql.DB, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory for SQLite: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=10000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open SQLite database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection opens its own in-memory database; a single
		// connection keeps the schema visible to all users of the handle.
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("ping SQLite database: %w", err)
	}

	return db, nil
}

// InitializeSchema creates the three tables if they don't exist: the weather
// cache (one row per location key), saved user cities (unique on
// name+country) and the append-only usage log.
func InitializeSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS weather_cache (
		location_key TEXT PRIMARY KEY,
		current_json TEXT NOT NULL,
		forecast_json TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create weather_cache table: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS user_cities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		country TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		added_at TIMESTAMP NOT NULL,
		UNIQUE (name, country)
	)`)
	if err != nil {
		return fmt.Errorf("create user_cities table: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		client_address TEXT NOT NULL,
		response_time_ms INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create usage_records table: %w", err)
	}

	return nil
}
