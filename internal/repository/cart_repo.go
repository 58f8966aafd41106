package repository

import (
	"context"
	"database/sql"
	"errors"

	"cartfleet/internal/models"
)

// ErrCartNotFound represents missing cart rows.
var ErrCartNotFound = errors.New("cart not found")

// CartRepository handles CRUD for the carts table.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository returns repository instance.
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

const cartColumns = `id, identifier, model, status, last_latitude, last_longitude,
	heading, battery, last_maintenance, assigned_user_id, created_at, updated_at`

func scanCart(row interface{ Scan(...any) error }) (*models.Cart, error) {
	var cart models.Cart
	err := row.Scan(&cart.ID, &cart.Identifier, &cart.Model, &cart.Status,
		&cart.LastLatitude, &cart.LastLongitude, &cart.Heading, &cart.Battery,
		&cart.LastMaintenance, &cart.AssignedUserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart.
func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	const query = `
		INSERT INTO carts (identifier, model, status, battery, assigned_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, cart.Identifier, cart.Model, cart.Status, cart.Battery, cart.AssignedUserID).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

// GetByID fetches a cart by primary key.
func (r *CartRepository) GetByID(ctx context.Context, id int64) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1 LIMIT 1`
	return scanCart(r.db.QueryRowContext(ctx, query, id))
}

// GetByIdentifier fetches a cart by its stable fleet identifier.
func (r *CartRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE identifier = $1 LIMIT 1`
	return scanCart(r.db.QueryRowContext(ctx, query, identifier))
}

// List returns carts, optionally filtered by status and minimum battery.
func (r *CartRepository) List(ctx context.Context, status string, minBattery int) ([]models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += ` AND status = $1`
	}
	if minBattery > 0 {
		args = append(args, minBattery)
		if len(args) == 1 {
			query += ` AND battery > $1`
		} else {
			query += ` AND battery > $2`
		}
	}
	query += ` ORDER BY identifier`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []models.Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, *cart)
	}
	return carts, rows.Err()
}

// Update persists administrative cart fields.
func (r *CartRepository) Update(ctx context.Context, cart *models.Cart) error {
	const query = `
		UPDATE carts
		SET model = $2, status = $3, battery = $4, last_maintenance = $5,
			assigned_user_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, cart.ID, cart.Model, cart.Status,
		cart.Battery, cart.LastMaintenance, cart.AssignedUserID).
		Scan(&cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartNotFound
	}
	return err
}

// UpdatePosition sets the last known coordinate for the cart identified by
// its fleet identifier. Heading and battery are optional.
func (r *CartRepository) UpdatePosition(ctx context.Context, identifier string, lat, lon float64, heading *float64, battery *int) error {
	const query = `
		UPDATE carts
		SET last_latitude = $2, last_longitude = $3,
			heading = COALESCE($4, heading),
			battery = COALESCE($5, battery),
			updated_at = NOW()
		WHERE identifier = $1
	`
	result, err := r.db.ExecContext(ctx, query, identifier, lat, lon, heading, battery)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrCartNotFound
	}
	return nil
}

// Delete removes a cart.
func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrCartNotFound
	}
	return nil
}
