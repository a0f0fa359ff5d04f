package domain

import "time"

// TicketHistory is an immutable audit entry written when a ticket is
// transferred to another group. It records who held the ticket before the
// transfer and where it went.
type TicketHistory struct {
	ID            string
	TicketID      string
	FromUserID    *string
	TargetGroupID string
	Subject       *string
	Description   *string
	CreatedAt     time.Time
}
