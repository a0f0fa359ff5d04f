package domain

import "time"

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an account that owns tickets and requests approvals. Group
// membership drives ticket assignment rules and approver resolution.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	GroupID      *string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
