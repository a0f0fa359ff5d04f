package domain

import "time"

// ProblemType categorizes tickets and keys SLA configuration.
type ProblemType struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CancelReason is a reference code required to cancel a ticket.
type CancelReason struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
