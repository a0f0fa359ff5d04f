package domain

import "time"

// CancelledTicket links a cancelled ticket to the cancelling user and the
// reason code. Exactly one row exists per cancellation and it is written in
// the same transaction that moves the ticket to CANCELLED.
type CancelledTicket struct {
	ID             string
	TicketID       string
	CancelledByID  string
	CancelReasonID string
	Notes          *string
	CreatedAt      time.Time
}
