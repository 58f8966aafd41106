package repository

import (
	"context"
	"database/sql"
	"errors"

	"cartfleet/internal/models"
)

// ErrLocationNotFound represents missing location rows.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepository stores the position history feed.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository returns repository instance.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create inserts a history row.
func (r *LocationRepository) Create(ctx context.Context, loc *models.Location) error {
	const query = `
		INSERT INTO locations (cart_id, user_id, latitude, longitude, trip_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, loc.CartID, loc.UserID, loc.Latitude, loc.Longitude, loc.TripStatus).
		Scan(&loc.ID, &loc.CreatedAt)
}

const locationColumns = `id, cart_id, user_id, latitude, longitude, trip_status, created_at`

func scanLocation(row interface{ Scan(...any) error }) (*models.Location, error) {
	var loc models.Location
	err := row.Scan(&loc.ID, &loc.CartID, &loc.UserID, &loc.Latitude, &loc.Longitude, &loc.TripStatus, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// GetByID fetches one history row.
func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1 LIMIT 1`
	return scanLocation(r.db.QueryRowContext(ctx, query, id))
}

// List returns recent history rows, newest first, optionally for one cart.
func (r *LocationRepository) List(ctx context.Context, cartID int64, limit int) ([]models.Location, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + locationColumns + ` FROM locations`
	args := []any{}
	if cartID > 0 {
		query += ` WHERE cart_id = $1`
		args = append(args, cartID)
	}
	if len(args) == 1 {
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *loc)
	}
	return locations, rows.Err()
}

// Delete removes a history row.
func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
