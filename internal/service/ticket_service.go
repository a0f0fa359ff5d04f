package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService owns the ticket lifecycle: creation, assignment, transfer,
// cancellation and priority changes.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	cancelled  repository.CancelledTicketRepository
	reasons    repository.CancelReasonRepository
	groups     repository.GroupRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	HistoryRepo      repository.TicketHistoryRepository
	CancelledRepo    repository.CancelledTicketRepository
	CancelReasonRepo repository.CancelReasonRepository
	GroupRepo        repository.GroupRepository
	UserRepo         repository.UserRepository
	Tx               repository.TxRunner
	Dispatcher       events.Dispatcher
	Now              func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	GroupID       string
	ProblemTypeID *string
	Subject       string
	Description   string
	Priority      domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		cancelled:  deps.CancelledRepo,
		reasons:    deps.CancelReasonRepo,
		groups:     deps.GroupRepo,
		users:      deps.UserRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateTicket registers a new ticket in OPEN status with no assignee.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	group, err := s.groups.GetByID(ctx, input.GroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": input.GroupID})
		}
		return nil, apperrors.MapError(err)
	}
	if !group.IsActive {
		return nil, apperrors.NewInvalidOperation("group inactive", map[string]any{"group_id": group.ID})
	}

	createdAt := s.now()
	ticket := &domain.Ticket{
		RegistrationNumber: generateRegistrationNumber(),
		GroupID:            group.ID,
		CreatedByID:        &userID,
		ProblemTypeID:      input.ProblemTypeID,
		Subject:            strings.TrimSpace(input.Subject),
		Description:        strings.TrimSpace(input.Description),
		Status:             domain.TicketStatusOpen,
		Priority:           input.Priority,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Assign puts the ticket in progress under the calling user. The ticket must
// be unassigned and belong to the caller's group. Idle duration is fixed at
// this moment as the span from creation to assignment.
func (s *TicketService) Assign(ctx context.Context, ticketID, callerID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Assigned() {
		return nil, apperrors.NewConflict("ticket already assigned", map[string]any{"ticket_id": ticket.ID})
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": callerID})
		}
		return nil, apperrors.MapError(err)
	}
	if caller.GroupID == nil || *caller.GroupID != ticket.GroupID {
		return nil, apperrors.NewConflict("ticket belongs to another group", map[string]any{
			"ticket_group_id": ticket.GroupID,
		})
	}

	assignedAt := s.now()
	idle := assignedAt.Sub(ticket.CreatedAt)
	ticket.UserID = &caller.ID
	ticket.Status = domain.TicketStatusInProgress
	ticket.AssignedDate = &assignedAt
	ticket.IdleDuration = &idle
	ticket.UpdatedAt = assignedAt

	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketAssigned, ticket.ID, callerID, events.TicketAssignedPayload{
		AssigneeID:   caller.ID,
		GroupID:      ticket.GroupID,
		IdleDuration: ticket.IdleDuration,
	})
	return ticket, nil
}

// Transfer moves the ticket to another group, clearing the assignment. The
// history record and the ticket mutation are written in one transaction.
func (s *TicketService) Transfer(ctx context.Context, ticketID, callerID, targetGroupID string, subject, description *string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != callerID {
		return nil, apperrors.NewForbidden("only the current assignee can transfer a ticket")
	}

	group, err := s.groups.GetByID(ctx, targetGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": targetGroupID})
		}
		return nil, apperrors.MapError(err)
	}
	if !group.IsActive {
		return nil, apperrors.NewConflict("target group inactive", map[string]any{"group_id": group.ID})
	}

	transferredAt := s.now()
	fromUserID := ticket.UserID

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry := &domain.TicketHistory{
			TicketID:      ticket.ID,
			FromUserID:    fromUserID,
			TargetGroupID: group.ID,
			Subject:       subject,
			Description:   description,
			CreatedAt:     transferredAt,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return err
		}

		ticket.GroupID = group.ID
		ticket.UserID = nil
		ticket.Status = domain.TicketStatusOpen
		ticket.AssignedDate = nil
		ticket.IdleDuration = nil
		ticket.UpdatedAt = transferredAt
		return s.tickets.Update(ctx, ticket)
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketTransferred, ticket.ID, callerID, events.TicketTransferredPayload{
		FromUserID:    fromUserID,
		TargetGroupID: group.ID,
	})
	return ticket, nil
}

// Cancel terminates the ticket with a reason code. The cancellation record
// and the status change are written in one transaction.
func (s *TicketService) Cancel(ctx context.Context, ticketID, callerID, cancelReasonID string, notes *string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != callerID {
		return nil, apperrors.NewForbidden("only the current assignee can cancel a ticket")
	}

	reason, err := s.reasons.GetByID(ctx, cancelReasonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("cancel reason does not exist", map[string]any{"cancel_reason_id": cancelReasonID})
		}
		return nil, apperrors.MapError(err)
	}
	if !reason.IsActive {
		return nil, apperrors.NewValidationError("cancel reason inactive", map[string]any{"cancel_reason_id": reason.ID})
	}

	cancelledAt := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record := &domain.CancelledTicket{
			TicketID:       ticket.ID,
			CancelledByID:  callerID,
			CancelReasonID: reason.ID,
			Notes:          notes,
			CreatedAt:      cancelledAt,
		}
		if err := s.cancelled.Create(ctx, record); err != nil {
			return err
		}

		ticket.Status = domain.TicketStatusCancelled
		ticket.UpdatedAt = cancelledAt
		return s.tickets.Update(ctx, ticket)
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCancelled, ticket.ID, callerID, events.TicketCancelledPayload{
		CancelReasonID: reason.ID,
		Notes:          notes,
	})
	return ticket, nil
}

// UpdatePriority overwrites the ticket priority. Only the assignee may do so.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID, callerID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != callerID {
		return nil, apperrors.NewForbidden("only the current assignee can change priority")
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	ticket.UpdatedAt = s.now()
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketPriorityChanged, ticket.ID, callerID, events.TicketPriorityChangedPayload{
		OldPriority: oldPriority,
		NewPriority: newPriority,
	})
	return ticket, nil
}

// GetTicketForUser fetches a ticket plus its transfer history, visible to
// its creator, current assignee, or members of its owning group.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.TicketHistory, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !s.userCanView(ctx, userID, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, history, nil
}

// ListTickets returns tickets created by or assigned to the given user.
func (s *TicketService) ListTickets(ctx context.Context, userID string, createdOnly bool, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{Limit: limit, Offset: offset}
	if createdOnly {
		filter.CreatedByID = &userID
	} else {
		filter.UserID = &userID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) updateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) userCanView(ctx context.Context, userID string, ticket *domain.Ticket) bool {
	if ticket.CreatedByID != nil && *ticket.CreatedByID == userID {
		return true
	}
	if ticket.UserID != nil && *ticket.UserID == userID {
		return true
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return user.GroupID != nil && *user.GroupID == ticket.GroupID
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, subjectID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func generateRegistrationNumber() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
