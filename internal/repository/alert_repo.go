package repository

import (
	"context"
	"database/sql"
	"errors"

	"cartfleet/internal/models"
)

// ErrAlertNotFound represents missing alert rows.
var ErrAlertNotFound = errors.New("alert not found")

// AlertRepository handles CRUD for the alerts table.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository returns repository instance.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	const query = `
		INSERT INTO alerts (type, detail, latitude, longitude, cart_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, attended, created_at
	`
	return r.db.QueryRowContext(ctx, query, alert.Type, alert.Detail, alert.Latitude,
		alert.Longitude, alert.CartID, alert.UserID).
		Scan(&alert.ID, &alert.Attended, &alert.CreatedAt)
}

const alertColumns = `id, type, detail, latitude, longitude, attended, cart_id, user_id, created_at`

func scanAlert(row interface{ Scan(...any) error }) (*models.Alert, error) {
	var alert models.Alert
	err := row.Scan(&alert.ID, &alert.Type, &alert.Detail, &alert.Latitude, &alert.Longitude,
		&alert.Attended, &alert.CartID, &alert.UserID, &alert.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// GetByID fetches an alert.
func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1 LIMIT 1`
	return scanAlert(r.db.QueryRowContext(ctx, query, id))
}

// List returns alerts, newest first. When onlyOpen is set, attended alerts
// are filtered out.
func (r *AlertRepository) List(ctx context.Context, onlyOpen bool) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	if onlyOpen {
		query += ` WHERE attended = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// MarkAttended flips the attended flag.
func (r *AlertRepository) MarkAttended(ctx context.Context, id int64) (*models.Alert, error) {
	query := `
		UPDATE alerts SET attended = TRUE WHERE id = $1
		RETURNING ` + alertColumns
	return scanAlert(r.db.QueryRowContext(ctx, query, id))
}

// Delete removes an alert.
func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}
