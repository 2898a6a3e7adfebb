package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/acrawford/weather-dashboard/internal/models"
)

// ErrDuplicateCity is returned when a (name, country) pair already exists.
// Surfaced distinctly from generic storage failures so the HTTP layer can map
// it to a conflict response.
var ErrDuplicateCity = errors.New("city already exists")

// CityRepository manages the user's saved cities.
type CityRepository struct {
	db *sql.DB
}

// NewCityRepository returns a CityRepository over the given database.
func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{db: db}
}

// List returns all saved cities, most recently added first.
func (r *CityRepository) List(ctx context.Context) ([]models.UserCity, error) {
	query := `SELECT id, name, country, lat, lon, added_at
		FROM user_cities ORDER BY added_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	cities := make([]models.UserCity, 0)
	for rows.Next() {
		var c models.UserCity
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Lat, &c.Lon, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

// Add inserts a new city and returns it with its assigned id. A duplicate
// (name, country) pair is rejected with ErrDuplicateCity, never overwritten.
func (r *CityRepository) Add(ctx context.Context, name, country string, lat, lon float64) (models.UserCity, error) {
	addedAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_cities (name, country, lat, lon, added_at) VALUES (?, ?, ?, ?, ?)`,
		name, country, lat, lon, addedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.UserCity{}, fmt.Errorf("%w: %s, %s", ErrDuplicateCity, name, country)
		}
		return models.UserCity{}, fmt.Errorf("insert city: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.UserCity{}, fmt.Errorf("city insert id: %w", err)
	}

	return models.UserCity{
		ID:      id,
		Name:    name,
		Country: country,
		Lat:     lat,
		Lon:     lon,
		AddedAt: addedAt,
	}, nil
}

// Get returns the city with the given id, or sql.ErrNoRows when absent.
func (r *CityRepository) Get(ctx context.Context, id int64) (models.UserCity, error) {
	var c models.UserCity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, country, lat, lon, added_at FROM user_cities WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Country, &c.Lat, &c.Lon, &c.AddedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.UserCity{}, err
		}
		return models.UserCity{}, fmt.Errorf("scan city: %w", err)
	}
	return c, nil
}

// Remove deletes the city with the given id and returns the number of rows
// removed (0 or 1). Removing a nonexistent id is not an error; the caller
// decides whether zero rows is a 404.
func (r *CityRepository) Remove(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_cities WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete city: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete rows affected: %w", err)
	}
	return affected, nil
}
