package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLAHandler exposes breach reports and SLA configuration endpoints.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// IdleBreaches GET /tickets/breaches/idle.
func (h *SLAHandler) IdleBreaches(c *fiber.Ctx) error {
	breaches, err := h.service.GetIdleBreachTickets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": breachResponses(breaches)})
}

// SlaBreaches GET /tickets/breaches/sla. Scoped to the caller's own created
// tickets.
func (h *SLAHandler) SlaBreaches(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	breaches, err := h.service.GetSlaBreachTickets(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": breachResponses(breaches)})
}

// UpsertIdleLimit PUT /sla/idle-limits.
func (h *SLAHandler) UpsertIdleLimit(c *fiber.Ctx) error {
	var req dto.UpsertIdleLimitRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.ProblemTypeID == "" {
		return util.NewValidationError("problem_type_id required", nil)
	}

	limit, err := h.service.UpsertIdleLimit(c.Context(), req.ProblemTypeID, time.Duration(req.TimeToAssignSeconds)*time.Second)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":                     limit.ID,
		"problem_type_id":        limit.ProblemTypeID,
		"time_to_assign_seconds": int64(limit.TimeToAssign / time.Second),
	}})
}

// UpsertSolutionTime PUT /sla/solution-times.
func (h *SLAHandler) UpsertSolutionTime(c *fiber.Ctx) error {
	var req dto.UpsertSolutionTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.ProblemTypeID == "" {
		return util.NewValidationError("problem_type_id required", nil)
	}

	st, err := h.service.UpsertSolutionTime(c.Context(), req.ProblemTypeID, time.Duration(req.TimeToSolveSeconds)*time.Second)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":                    st.ID,
		"problem_type_id":       st.ProblemTypeID,
		"time_to_solve_seconds": int64(st.TimeToSolve / time.Second),
	}})
}

func breachResponses(breaches []service.TicketBreach) []dto.BreachResponse {
	resp := make([]dto.BreachResponse, 0, len(breaches))
	for i := range breaches {
		resp = append(resp, dto.BreachResponse{
			Ticket:         ticketResponse(&breaches[i].Ticket),
			IdleDuration:   breaches[i].FormattedIdle,
			AllowedSeconds: int64(breaches[i].Allowed / time.Second),
		})
	}
	return resp
}
