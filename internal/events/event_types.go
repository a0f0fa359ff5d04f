package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketTransferred     EventType = "ticket_transferred"
	EventTicketCancelled       EventType = "ticket_cancelled"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventApprovalRequested     EventType = "approval_requested"
	EventApprovalDecided       EventType = "approval_decided"
	EventApprovalCancelled     EventType = "approval_cancelled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID   string         `json:"assignee_id"`
	GroupID      string         `json:"group_id"`
	IdleDuration *time.Duration `json:"idle_duration,omitempty"`
}

// TicketTransferredPayload payload.
type TicketTransferredPayload struct {
	FromUserID    *string `json:"from_user_id,omitempty"`
	TargetGroupID string  `json:"target_group_id"`
}

// TicketCancelledPayload payload.
type TicketCancelledPayload struct {
	CancelReasonID string  `json:"cancel_reason_id"`
	Notes          *string `json:"notes,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// ApprovalRequestedPayload payload.
type ApprovalRequestedPayload struct {
	ApproverID string `json:"approver_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	ActionType string `json:"action_type"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	RequesterID string                `json:"requester_id"`
	Status      domain.ApprovalStatus `json:"status"`
	Comments    *string               `json:"comments,omitempty"`
}

// ApprovalCancelledPayload payload.
type ApprovalCancelledPayload struct {
	ApproverID string `json:"approver_id"`
}
