package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService records notifications and mirrors domain events to the
// configured delivery stubs.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
	now           func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Notify persists a notification row for the recipient.
func (n *NotificationService) Notify(ctx context.Context, recipientID, message string, ntype domain.NotificationType, relatedEntityType, relatedEntityID *string) error {
	notification := &domain.Notification{
		RecipientID:       recipientID,
		Message:           message,
		Type:              ntype,
		RelatedEntityType: relatedEntityType,
		RelatedEntityID:   relatedEntityID,
		SentAt:            n.now(),
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.sendEmailNotificationStub(recipientID, message)
	n.sendWebhookNotificationStub(recipientID, string(ntype))
	return nil
}

// ListForRecipient returns the recipient's notifications, newest first.
func (n *NotificationService) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.ListByRecipient(ctx, recipientID, limit, offset)
}

// MarkRead flips the read flag on one of the recipient's notifications.
func (n *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return n.notifications.MarkRead(ctx, id, recipientID)
}

// RegisterHandlers subscribes to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleLogged("TicketAssigned"))
	n.dispatcher.Subscribe(events.EventTicketTransferred, n.handleTicketTransferred)
	n.dispatcher.Subscribe(events.EventTicketCancelled, n.handleLogged("TicketCancelled"))
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.handleLogged("TicketPriorityChanged"))
	n.dispatcher.Subscribe(events.EventApprovalRequested, n.handleLogged("ApprovalRequested"))
	n.dispatcher.Subscribe(events.EventApprovalDecided, n.handleLogged("ApprovalDecided"))
	n.dispatcher.Subscribe(events.EventApprovalCancelled, n.handleLogged("ApprovalCancelled"))
}

// handleTicketTransferred tells the previous assignee their ticket moved on.
func (n *NotificationService) handleTicketTransferred(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketTransferred", zap.String("ticket_id", event.SubjectID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.TicketTransferredPayload)
	if !ok || payload.FromUserID == nil {
		return nil
	}
	relatedType := "ticket"
	return n.Notify(ctx, *payload.FromUserID,
		"a ticket you held was transferred to another group",
		domain.NotificationTypeTicketTransfer, &relatedType, &event.SubjectID)
}

func (n *NotificationService) handleLogged(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name, zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
		return nil
	}
}

func (n *NotificationService) sendEmailNotificationStub(recipientID, message string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_id", recipientID),
		zap.String("message", message))
}

func (n *NotificationService) sendWebhookNotificationStub(recipientID, notificationType string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("recipient_id", recipientID),
		zap.String("type", notificationType))
}
