package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CacheEntry is one cached combined weather payload. The store treats the
// current and forecast halves as opaque encoded blobs; serialization lives at
// the gateway boundary.
type CacheEntry struct {
	Key          string
	CurrentJSON  []byte
	ForecastJSON []byte
	CachedAt     time.Time
	ExpiresAt    time.Time
}

// CacheStore persists combined weather payloads keyed by location fingerprint.
// Reads apply the expiry filter at read time; the periodic sweep only reclaims
// space and is never required for read correctness. Concurrent writers for the
// same key race under last-write-wins.
type CacheStore struct {
	db *sql.DB
}

// NewCacheStore returns a CacheStore over the given database.
func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: db}
}

// Get returns the entry for key, or nil when no row exists or the row has
// already expired (the row may still be physically present until the sweep).
func (s *CacheStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	query := `SELECT location_key, current_json, forecast_json, cached_at, expires_at
		FROM weather_cache WHERE location_key = ? AND expires_at > ?`
	row := s.db.QueryRowContext(ctx, query, key, time.Now().UTC())

	var entry CacheEntry
	err := row.Scan(&entry.Key, &entry.CurrentJSON, &entry.ForecastJSON, &entry.CachedAt, &entry.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan cache entry: %w", err)
	}
	return &entry, nil
}

// Put upserts the entry for key, replacing any prior row.
func (s *CacheStore) Put(ctx context.Context, key string, currentJSON, forecastJSON []byte, expiresAt time.Time) error {
	query := `INSERT INTO weather_cache (location_key, current_json, forecast_json, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location_key) DO UPDATE SET
			current_json = excluded.current_json,
			forecast_json = excluded.forecast_json,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`
	_, err := s.db.ExecContext(ctx, query, key, currentJSON, forecastJSON, time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

// SweepExpired deletes all rows whose expiry has passed and returns the
// number of rows removed.
func (s *CacheStore) SweepExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM weather_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired cache entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows affected: %w", err)
	}
	return deleted, nil
}

// Ping reports whether the underlying database is reachable. Used by the
// health endpoint.
func (s *CacheStore) Ping() error {
	return s.db.Ping()
}
