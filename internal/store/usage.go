package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UsageRepository is the append-only API usage sink. The core only writes
// here; the rows exist for external analysis and are never read back.
type UsageRepository struct {
	db *sql.DB
}

// NewUsageRepository returns a UsageRepository over the given database.
func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Record appends one usage row.
func (r *UsageRepository) Record(ctx context.Context, endpoint, clientAddress string, responseTimeMs int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO usage_records (endpoint, timestamp, client_address, response_time_ms) VALUES (?, ?, ?, ?)`,
		endpoint, time.Now().UTC(), clientAddress, responseTimeMs)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}
