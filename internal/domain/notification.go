package domain

import "time"

// NotificationType classifies notification records.
type NotificationType string

const (
	NotificationTypeApprovalRequest NotificationType = "APPROVAL_REQUEST"
	NotificationTypeApprovalResult  NotificationType = "APPROVAL_RESULT"
	NotificationTypeTicketTransfer  NotificationType = "TICKET_TRANSFER"
)

// Notification is a message recorded for a user. Rows are append-only apart
// from the read flag.
type Notification struct {
	ID                string
	RecipientID       string
	Message           string
	Type              NotificationType
	RelatedEntityType *string
	RelatedEntityID   *string
	Read              bool
	SentAt            time.Time
}
