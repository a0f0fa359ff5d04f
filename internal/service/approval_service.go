package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/actions"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Notifier records a notification for a user.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string, ntype domain.NotificationType, relatedEntityType, relatedEntityID *string) error
}

// ApprovalService runs the approval workflow for privileged actions. A
// request is created Pending with the approver fixed to the requester's group
// manager, and moves exactly once to Approved, Rejected or Cancelled.
type ApprovalService struct {
	approvals  repository.ApprovalRepository
	users      repository.UserRepository
	groups     repository.GroupRepository
	registry   *actions.Registry
	notifier   Notifier
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ApprovalDependencies bundles collaborators for the approval service.
type ApprovalDependencies struct {
	ApprovalRepo repository.ApprovalRepository
	UserRepo     repository.UserRepository
	GroupRepo    repository.GroupRepository
	Registry     *actions.Registry
	Notifier     Notifier
	Tx           repository.TxRunner
	Dispatcher   events.Dispatcher
	Now          func() time.Time
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ApprovalService{
		approvals:  deps.ApprovalRepo,
		users:      deps.UserRepo,
		groups:     deps.GroupRepo,
		registry:   deps.Registry,
		notifier:   deps.Notifier,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateRequest opens a Pending request for the given entity/action pair.
// The approver is the requester's group manager, resolved here and never
// again: later manager changes do not retarget in-flight requests.
func (s *ApprovalService) CreateRequest(ctx context.Context, requesterID, entityType, entityID, actionType string, comments *string) (*domain.ApprovalRequest, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": requesterID})
		}
		return nil, apperrors.MapError(err)
	}
	if requester.GroupID == nil {
		return nil, apperrors.NewInvalidOperation("user has no group", map[string]any{"user_id": requester.ID})
	}

	group, err := s.groups.GetByID(ctx, *requester.GroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": *requester.GroupID})
		}
		return nil, apperrors.MapError(err)
	}
	if group.ManagerID == nil {
		return nil, apperrors.NewInvalidOperation("group has no manager", map[string]any{"group_id": group.ID})
	}

	request := &domain.ApprovalRequest{
		RequestedByID:     requester.ID,
		ApproverID:        *group.ManagerID,
		EntityType:        entityType,
		EntityID:          entityID,
		ActionType:        actionType,
		Status:            domain.ApprovalStatusPending,
		RequesterComments: comments,
		RequestedAt:       s.now(),
	}
	if err := s.approvals.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.notify(ctx, request.ApproverID,
		fmt.Sprintf("approval requested: %s on %s/%s", actionType, entityType, entityID),
		domain.NotificationTypeApprovalRequest, request.ID)
	s.publish(ctx, events.EventApprovalRequested, request.ID, requester.ID, events.ApprovalRequestedPayload{
		ApproverID: request.ApproverID,
		EntityType: entityType,
		EntityID:   entityID,
		ActionType: actionType,
	})
	return request, nil
}

// Approve executes the requested action and marks the request Approved. The
// action runs before the status write and both commit together, so a failed
// action leaves the request Pending and retryable; the request is never
// Approved unless the action actually ran.
func (s *ApprovalService) Approve(ctx context.Context, requestID, approverID string, comments *string) error {
	request, err := s.getPendingForApprover(ctx, requestID, approverID)
	if err != nil {
		return err
	}

	actionDate := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.registry.Execute(ctx, actions.EntityType(request.EntityType), actions.ActionType(request.ActionType), request.EntityID); err != nil {
			return err
		}
		request.Status = domain.ApprovalStatusApproved
		request.ApproverComments = comments
		request.ActionDate = &actionDate
		return s.approvals.Update(ctx, request)
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("request was modified concurrently", map[string]any{"request_id": request.ID})
		}
		return apperrors.MapError(err)
	}

	s.notify(ctx, request.RequestedByID,
		fmt.Sprintf("your %s request on %s/%s was approved", request.ActionType, request.EntityType, request.EntityID),
		domain.NotificationTypeApprovalResult, request.ID)
	s.publish(ctx, events.EventApprovalDecided, request.ID, approverID, events.ApprovalDecidedPayload{
		RequesterID: request.RequestedByID,
		Status:      domain.ApprovalStatusApproved,
		Comments:    comments,
	})
	return nil
}

// Reject marks the request Rejected without executing anything.
func (s *ApprovalService) Reject(ctx context.Context, requestID, approverID string, comments *string) error {
	request, err := s.getPendingForApprover(ctx, requestID, approverID)
	if err != nil {
		return err
	}

	actionDate := s.now()
	request.Status = domain.ApprovalStatusRejected
	request.ApproverComments = comments
	request.ActionDate = &actionDate
	if err := s.approvals.Update(ctx, request); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("request was modified concurrently", map[string]any{"request_id": request.ID})
		}
		return apperrors.MapError(err)
	}

	s.notify(ctx, request.RequestedByID,
		fmt.Sprintf("your %s request on %s/%s was rejected", request.ActionType, request.EntityType, request.EntityID),
		domain.NotificationTypeApprovalResult, request.ID)
	s.publish(ctx, events.EventApprovalDecided, request.ID, approverID, events.ApprovalDecidedPayload{
		RequesterID: request.RequestedByID,
		Status:      domain.ApprovalStatusRejected,
		Comments:    comments,
	})
	return nil
}

// Cancel withdraws a Pending request. Only the original requester may do so.
func (s *ApprovalService) Cancel(ctx context.Context, requestID, requesterID string) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RequestedByID != requesterID {
		return apperrors.NewForbidden("only the requester can cancel the request")
	}
	if request.Status.Terminal() {
		return apperrors.NewInvalidOperation("request is not pending", map[string]any{"status": request.Status})
	}

	actionDate := s.now()
	request.Status = domain.ApprovalStatusCancelled
	request.ActionDate = &actionDate
	if err := s.approvals.Update(ctx, request); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("request was modified concurrently", map[string]any{"request_id": request.ID})
		}
		return apperrors.MapError(err)
	}

	s.notify(ctx, request.ApproverID,
		fmt.Sprintf("%s request on %s/%s was withdrawn", request.ActionType, request.EntityType, request.EntityID),
		domain.NotificationTypeApprovalResult, request.ID)
	s.publish(ctx, events.EventApprovalCancelled, request.ID, requesterID, events.ApprovalCancelledPayload{
		ApproverID: request.ApproverID,
	})
	return nil
}

// ListPendingForApprover returns requests awaiting the given manager.
func (s *ApprovalService) ListPendingForApprover(ctx context.Context, approverID string) ([]domain.ApprovalRequest, error) {
	requests, err := s.approvals.ListPendingByApprover(ctx, approverID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

func (s *ApprovalService) getRequest(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	request, err := s.approvals.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("approval request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *ApprovalService) getPendingForApprover(ctx context.Context, requestID, approverID string) (*domain.ApprovalRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApproverID != approverID {
		return nil, apperrors.NewForbidden("only the assigned approver can decide this request")
	}
	if request.Status.Terminal() {
		return nil, apperrors.NewInvalidOperation("request is not pending", map[string]any{"status": request.Status})
	}
	return request, nil
}

func (s *ApprovalService) notify(ctx context.Context, recipientID, message string, ntype domain.NotificationType, requestID string) {
	if s.notifier == nil {
		return
	}
	relatedType := "approval_request"
	_ = s.notifier.Notify(ctx, recipientID, message, ntype, &relatedType, &requestID)
}

func (s *ApprovalService) publish(ctx context.Context, eventType events.EventType, subjectID, actorID string, payload interface{}) {
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
