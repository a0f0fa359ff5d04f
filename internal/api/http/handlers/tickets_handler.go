package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.GroupID == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" {
		return util.NewValidationError("group_id, subject, description required", nil)
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return util.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	input := service.TicketCreateInput{
		GroupID:       req.GroupID,
		ProblemTypeID: req.ProblemTypeID,
		Subject:       req.Subject,
		Description:   req.Description,
		Priority:      req.Priority,
	}
	ticket, err := h.service.CreateTicket(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets. With created=true lists the caller's created
// tickets instead of those assigned to them.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}

	createdOnly := c.Query("created") == "true"
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	tickets, err := h.service.ListTickets(c.Context(), principal.User.ID, createdOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticket, history, err := h.service.GetTicketForUser(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, history)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticket, err := h.service.Assign(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// TransferTicket POST /tickets/:id/transfer.
func (h *TicketsHandler) TransferTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.TransferTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.TargetGroupID == "" {
		return util.NewValidationError("target_group_id required", nil)
	}

	ticket, err := h.service.Transfer(c.Context(), c.Params("id"), principal.User.ID, req.TargetGroupID, req.Subject, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.CancelTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.CancelReasonID == "" {
		return util.NewValidationError("cancel_reason_id required", nil)
	}

	ticket, err := h.service.Cancel(c.Context(), c.Params("id"), principal.User.ID, req.CancelReasonID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if !validPriority(req.Priority) {
		return util.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.service.UpdatePriority(c.Context(), c.Params("id"), principal.User.ID, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func validPriority(p domain.TicketPriority) bool {
	switch p {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
		return true
	}
	return false
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:                 ticket.ID,
		RegistrationNumber: ticket.RegistrationNumber,
		GroupID:            ticket.GroupID,
		UserID:             ticket.UserID,
		CreatedByID:        ticket.CreatedByID,
		ProblemTypeID:      ticket.ProblemTypeID,
		Subject:            ticket.Subject,
		Description:        ticket.Description,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		AssignedDate:       ticket.AssignedDate,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
	if ticket.IdleDuration != nil {
		formatted := util.FormatDuration(*ticket.IdleDuration)
		resp.IdleDuration = &formatted
	}
	return resp
}

func ticketDetail(ticket *domain.Ticket, history []domain.TicketHistory) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(ticket),
		History:        historyResponses(history),
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:            entry.ID,
			FromUserID:    entry.FromUserID,
			TargetGroupID: entry.TargetGroupID,
			Subject:       entry.Subject,
			Description:   entry.Description,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return resp
}
