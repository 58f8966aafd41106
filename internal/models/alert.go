package models

import "time"

// Alert type values.
const (
	AlertMedical    = "medical_emergency"
	AlertMechanical = "mechanical_failure"
	AlertLowBattery = "low_battery"
	AlertAccident   = "accident"
	AlertObstacle   = "obstacle"
	AlertOther      = "other"
)

// ValidAlertType reports whether t is a known alert type.
func ValidAlertType(t string) bool {
	switch t {
	case AlertMedical, AlertMechanical, AlertLowBattery, AlertAccident, AlertObstacle, AlertOther:
		return true
	}
	return false
}

// Alert is an operator-facing emergency or status notice tied to a cart.
type Alert struct {
	ID        int64     `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Detail    string    `db:"detail" json:"detail"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Attended  bool      `db:"attended" json:"attended"`
	CartID    int64     `db:"cart_id" json:"cart_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
