package models

import "time"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBellman    = "bellman"
	RoleUser       = "user"
)

// ValidRole reports whether r is a known account role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleBellman, RoleUser:
		return true
	}
	return false
}

// User represents an account able to log in and operate carts.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Phone        string    `db:"phone" json:"phone"`
	PhotoURL     string    `db:"photo_url" json:"photo_url"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
