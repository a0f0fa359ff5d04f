package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateApprovalRequest payload.
type CreateApprovalRequest struct {
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	ActionType string  `json:"action_type"`
	Comments   *string `json:"comments"`
}

// ApprovalDecisionRequest payload for approve/reject.
type ApprovalDecisionRequest struct {
	Comments *string `json:"comments"`
}

// ApprovalResponse mirrors an approval request.
type ApprovalResponse struct {
	ID                string                `json:"id"`
	RequestedByID     string                `json:"requested_by_id"`
	ApproverID        string                `json:"approver_id"`
	EntityType        string                `json:"entity_type"`
	EntityID          string                `json:"entity_id"`
	ActionType        string                `json:"action_type"`
	Status            domain.ApprovalStatus `json:"status"`
	RequesterComments *string               `json:"requester_comments"`
	ApproverComments  *string               `json:"approver_comments"`
	RequestedAt       time.Time             `json:"requested_at"`
	ActionDate        *time.Time            `json:"action_date"`
}
