package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationsHandler lists and acknowledges user notifications.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	notifications, err := h.service.ListForRecipient(c.Context(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return util.MapError(err)
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:                n.ID,
			Message:           n.Message,
			Type:              string(n.Type),
			RelatedEntityType: n.RelatedEntityType,
			RelatedEntityID:   n.RelatedEntityID,
			Read:              n.Read,
			SentAt:            n.SentAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	if err := h.service.MarkRead(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return util.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}
