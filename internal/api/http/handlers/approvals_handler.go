package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// ApprovalsHandler manages the approval workflow endpoints.
type ApprovalsHandler struct {
	service *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(approvalService *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{service: approvalService}
}

// CreateRequest POST /approvals.
func (h *ApprovalsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.CreateApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.EntityType == "" || req.EntityID == "" || req.ActionType == "" {
		return util.NewValidationError("entity_type, entity_id, action_type required", nil)
	}

	request, err := h.service.CreateRequest(c.Context(), principal.User.ID, req.EntityType, req.EntityID, req.ActionType, req.Comments)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": approvalResponse(request)})
}

// ListPending GET /approvals/pending. Lists requests awaiting the caller.
func (h *ApprovalsHandler) ListPending(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	requests, err := h.service.ListPendingForApprover(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ApprovalResponse, 0, len(requests))
	for i := range requests {
		items = append(items, approvalResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /approvals/:id/approve.
func (h *ApprovalsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.ApprovalDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	if err := h.service.Approve(c.Context(), c.Params("id"), principal.User.ID, req.Comments); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": domain.ApprovalStatusApproved}})
}

// Reject POST /approvals/:id/reject.
func (h *ApprovalsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.ApprovalDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	if err := h.service.Reject(c.Context(), c.Params("id"), principal.User.ID, req.Comments); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": domain.ApprovalStatusRejected}})
}

// Cancel POST /approvals/:id/cancel.
func (h *ApprovalsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	if err := h.service.Cancel(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": domain.ApprovalStatusCancelled}})
}

func approvalResponse(request *domain.ApprovalRequest) dto.ApprovalResponse {
	return dto.ApprovalResponse{
		ID:                request.ID,
		RequestedByID:     request.RequestedByID,
		ApproverID:        request.ApproverID,
		EntityType:        request.EntityType,
		EntityID:          request.EntityID,
		ActionType:        request.ActionType,
		Status:            request.Status,
		RequesterComments: request.RequesterComments,
		ApproverComments:  request.ApproverComments,
		RequestedAt:       request.RequestedAt,
		ActionDate:        request.ActionDate,
	}
}
