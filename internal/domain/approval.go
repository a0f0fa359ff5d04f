package domain

import "time"

// ApprovalStatus enumerates approval request states. Pending is the only
// non-terminal state.
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "PENDING"
	ApprovalStatusApproved  ApprovalStatus = "APPROVED"
	ApprovalStatusRejected  ApprovalStatus = "REJECTED"
	ApprovalStatusCancelled ApprovalStatus = "CANCELLED"
)

// Terminal reports whether the status can no longer change.
func (s ApprovalStatus) Terminal() bool {
	return s != ApprovalStatusPending
}

// ApprovalRequest is a pending privileged action awaiting a manager decision.
// ApproverID is resolved from the requester's group manager once, at creation,
// and is never re-resolved afterwards.
type ApprovalRequest struct {
	ID                string
	RequestedByID     string
	ApproverID        string
	EntityType        string
	EntityID          string
	ActionType        string
	Status            ApprovalStatus
	RequesterComments *string
	ApproverComments  *string
	RequestedAt       time.Time
	ActionDate        *time.Time
	RowVersion        int64
}
