package models

import "time"

// Trip status values for location history rows.
const (
	TripStatusEnRoute   = "en_route"
	TripStatusCompleted = "completed"
	TripStatusAhead     = "ahead"
)

// ValidTripStatus reports whether s is a known trip status.
func ValidTripStatus(s string) bool {
	switch s {
	case TripStatusEnRoute, TripStatusCompleted, TripStatusAhead:
		return true
	}
	return false
}

// Location is one recorded position fix for a cart, attributed to a user.
type Location struct {
	ID         int64     `db:"id" json:"id"`
	CartID     int64     `db:"cart_id" json:"cart_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	TripStatus string    `db:"trip_status" json:"trip_status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
