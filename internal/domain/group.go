package domain

import "time"

// Group is an organizational unit owning tickets. Its manager approves
// privileged actions requested by members.
type Group struct {
	ID        string
	Name      string
	ManagerID *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
