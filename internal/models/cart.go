package models

import "time"

// Cart status values.
const (
	CartStatusActive      = "active"
	CartStatusInactive    = "inactive"
	CartStatusMaintenance = "maintenance"
)

// ValidCartStatus reports whether s is a known operational status.
func ValidCartStatus(s string) bool {
	switch s {
	case CartStatusActive, CartStatusInactive, CartStatusMaintenance:
		return true
	}
	return false
}

// Cart represents one golf cart in the fleet.
type Cart struct {
	ID              int64      `db:"id" json:"id"`
	Identifier      string     `db:"identifier" json:"identifier"`
	Model           string     `db:"model" json:"model"`
	Status          string     `db:"status" json:"status"`
	LastLatitude    *float64   `db:"last_latitude" json:"last_latitude"`
	LastLongitude   *float64   `db:"last_longitude" json:"last_longitude"`
	Heading         *float64   `db:"heading" json:"heading"`
	Battery         int        `db:"battery" json:"battery"`
	LastMaintenance *time.Time `db:"last_maintenance" json:"last_maintenance"`
	AssignedUserID  *int64     `db:"assigned_user_id" json:"assigned_user_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
