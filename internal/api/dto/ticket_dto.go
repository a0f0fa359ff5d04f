package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	GroupID       string                `json:"group_id"`
	ProblemTypeID *string               `json:"problem_type_id"`
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	TargetGroupID string  `json:"target_group_id"`
	Subject       *string `json:"subject"`
	Description   *string `json:"description"`
}

// CancelTicketRequest payload.
type CancelTicketRequest struct {
	CancelReasonID string  `json:"cancel_reason_id"`
	Notes          *string `json:"notes"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResponse mirrors the ticket aggregate.
type TicketResponse struct {
	ID                 string                `json:"id"`
	RegistrationNumber string                `json:"registration_number"`
	GroupID            string                `json:"group_id"`
	UserID             *string               `json:"user_id"`
	CreatedByID        *string               `json:"created_by_id"`
	ProblemTypeID      *string               `json:"problem_type_id"`
	Subject            string                `json:"subject"`
	Description        string                `json:"description"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	AssignedDate       *time.Time            `json:"assigned_date"`
	IdleDuration       *string               `json:"idle_duration"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// TicketHistoryResponse mirrors a transfer audit entry.
type TicketHistoryResponse struct {
	ID            string    `json:"id"`
	FromUserID    *string   `json:"from_user_id"`
	TargetGroupID string    `json:"target_group_id"`
	Subject       *string   `json:"subject"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketDetailResponse is a ticket with its transfer history.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
}

// BreachResponse describes one SLA-breaching ticket.
type BreachResponse struct {
	Ticket         TicketResponse `json:"ticket"`
	IdleDuration   string         `json:"idle_duration"`
	AllowedSeconds int64          `json:"allowed_seconds"`
}

// UpsertIdleLimitRequest payload.
type UpsertIdleLimitRequest struct {
	ProblemTypeID       string `json:"problem_type_id"`
	TimeToAssignSeconds int64  `json:"time_to_assign_seconds"`
}

// UpsertSolutionTimeRequest payload.
type UpsertSolutionTimeRequest struct {
	ProblemTypeID      string `json:"problem_type_id"`
	TimeToSolveSeconds int64  `json:"time_to_solve_seconds"`
}
