package model

import "time"

// User roles.  Planners manage schedules and shows; admins additionally
// manage reference data and other users.
const (
	RoleAdmin   = "ADMIN"
	RolePlanner = "PLANNER"
)

// User mirrors the users table.  PasswordHash stores a bcrypt hash and must
// never be serialized into API responses.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
