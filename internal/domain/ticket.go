package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusUnderReview     TicketStatus = "UNDER_REVIEW"
	TicketStatusReadyForTesting TicketStatus = "READY_FOR_TESTING"
	TicketStatusTesting         TicketStatus = "TESTING"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
	TicketStatusReopened        TicketStatus = "REOPENED"
	TicketStatusCancelled       TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency, ordered from least to most severe.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for helpdesk requests.
//
// AssignedDate and IdleDuration are set together on assignment and cleared
// together on transfer; a ticket never carries one without the other.
type Ticket struct {
	ID                 string
	RegistrationNumber string
	GroupID            string
	UserID             *string
	CreatedByID        *string
	ProblemTypeID      *string
	Subject            string
	Description        string
	Status             TicketStatus
	Priority           TicketPriority
	AssignedDate       *time.Time
	IdleDuration       *time.Duration
	RowVersion         int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Assigned reports whether the ticket currently has an assignee.
func (t *Ticket) Assigned() bool {
	return t.UserID != nil
}
