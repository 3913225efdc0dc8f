package models

import "time"

// User is a staff or member account. Role and tenant scope end up in the session token.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	GymID        *string   `json:"gym_id,omitempty" db:"gym_id"`
	BranchID     *string   `json:"branch_id,omitempty" db:"branch_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is the authenticated caller as seen by services.
type Session struct {
	UserID   int64
	Username string
	Role     string
	GymID    string
	BranchID string
}
