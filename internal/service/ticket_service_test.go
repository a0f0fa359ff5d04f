package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketEnv struct {
	service   *TicketService
	tickets   *fakeTicketRepo
	history   *fakeHistoryRepo
	cancelled *fakeCancelledRepo
	reasons   *fakeReasonRepo
	groups    *fakeGroupRepo
	users     *fakeUserRepo
	clock     *fixedClock
}

func newTicketEnv() *ticketEnv {
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	cancelled := &fakeCancelledRepo{}
	reasons := &fakeReasonRepo{reasons: map[string]domain.CancelReason{
		"reason-1": {ID: "reason-1", Name: "duplicate", IsActive: true},
		"reason-2": {ID: "reason-2", Name: "retired", IsActive: false},
	}}
	groups := newFakeGroupRepo()
	users := newFakeUserRepo()
	clock := newFixedClock()

	svc := NewTicketService(TicketDependencies{
		TicketRepo:       tickets,
		HistoryRepo:      history,
		CancelledRepo:    cancelled,
		CancelReasonRepo: reasons,
		GroupRepo:        groups,
		UserRepo:         users,
		Tx:               &fakeTx{stores: []snapshotter{tickets, history, cancelled}},
		Now:              clock.Now,
	})
	return &ticketEnv{
		service:   svc,
		tickets:   tickets,
		history:   history,
		cancelled: cancelled,
		reasons:   reasons,
		groups:    groups,
		users:     users,
		clock:     clock,
	}
}

func (e *ticketEnv) addGroup(t *testing.T, active bool) *domain.Group {
	t.Helper()
	group := &domain.Group{Name: "support", IsActive: active}
	if err := e.groups.Create(context.Background(), group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	return group
}

func (e *ticketEnv) addUser(t *testing.T, groupID *string) *domain.User {
	t.Helper()
	user := &domain.User{Name: "agent", Email: "agent@example.com", GroupID: groupID, Status: domain.UserStatusActive}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *ticketEnv) createTicket(t *testing.T, groupID string, creatorID string) *domain.Ticket {
	t.Helper()
	ticket, err := e.service.CreateTicket(context.Background(), creatorID, TicketCreateInput{
		GroupID:     groupID,
		Subject:     "printer jam",
		Description: "paper stuck in tray 2",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

func TestCreateTicketDefaults(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	creator := env.addUser(t, &group.ID)

	ticket := env.createTicket(t, group.ID, creator.ID)

	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected OPEN status, got %s", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("expected MEDIUM priority default, got %s", ticket.Priority)
	}
	if ticket.Assigned() {
		t.Fatal("new ticket must not be assigned")
	}
	if ticket.RegistrationNumber == "" {
		t.Fatal("registration number must be set")
	}
}

func TestAssignFixesIdleDuration(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	env.clock.Advance(2 * time.Hour)

	updated, err := env.service.Assign(context.Background(), ticket.ID, agent.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}
	if updated.UserID == nil || *updated.UserID != agent.ID {
		t.Fatal("expected ticket assigned to agent")
	}
	if updated.AssignedDate == nil || updated.IdleDuration == nil {
		t.Fatal("assigned date and idle duration must both be set")
	}
	if *updated.IdleDuration != 2*time.Hour {
		t.Fatalf("expected 2h idle duration, got %s", *updated.IdleDuration)
	}
	if updated.AssignedDate.Sub(updated.CreatedAt) != *updated.IdleDuration {
		t.Fatal("idle duration must equal assignment minus creation")
	}
}

func TestAssignAlreadyAssignedConflict(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	first := env.addUser(t, &group.ID)
	second := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, first.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, first.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := env.service.Assign(context.Background(), ticket.ID, second.ID)
	assertErrorCode(t, err, "CONFLICT")

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.UserID == nil || *stored.UserID != first.ID {
		t.Fatal("assignment must remain with the first agent")
	}
}

func TestAssignGroupMismatchConflict(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	other := env.addGroup(t, true)
	outsider := env.addUser(t, &other.ID)
	creator := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, creator.ID)

	_, err := env.service.Assign(context.Background(), ticket.ID, outsider.ID)
	assertErrorCode(t, err, "CONFLICT")
}

func TestAssignUnknownTicketNotFound(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)

	_, err := env.service.Assign(context.Background(), "missing", agent.ID)
	assertErrorCode(t, err, "NOT_FOUND")
}

func TestTransferClearsAssignmentAndWritesHistory(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	target := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	note := "escalating to network team"
	updated, err := env.service.Transfer(context.Background(), ticket.ID, agent.ID, target.ID, nil, &note)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if updated.GroupID != target.ID {
		t.Fatalf("expected group %s, got %s", target.ID, updated.GroupID)
	}
	if updated.UserID != nil || updated.AssignedDate != nil || updated.IdleDuration != nil {
		t.Fatal("transfer must clear assignee, assigned date and idle duration")
	}
	if updated.Status != domain.TicketStatusOpen {
		t.Fatalf("expected OPEN after transfer, got %s", updated.Status)
	}

	entries, _ := env.history.ListByTicket(context.Background(), ticket.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].FromUserID == nil || *entries[0].FromUserID != agent.ID {
		t.Fatal("history must record the previous assignee")
	}
	if entries[0].TargetGroupID != target.ID {
		t.Fatal("history must record the target group")
	}
}

func TestTransferRollsBackHistoryOnFailure(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	target := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	env.tickets.failUpdate = errors.New("storage down")
	if _, err := env.service.Transfer(context.Background(), ticket.ID, agent.ID, target.ID, nil, nil); err == nil {
		t.Fatal("expected transfer failure")
	}
	env.tickets.failUpdate = nil

	entries, _ := env.history.ListByTicket(context.Background(), ticket.ID)
	if len(entries) != 0 {
		t.Fatalf("history must roll back with the ticket update, found %d entries", len(entries))
	}
	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.UserID == nil || *stored.UserID != agent.ID {
		t.Fatal("failed transfer must leave the assignment intact")
	}
}

func TestTransferNonAssigneeForbidden(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	target := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	bystander := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.Transfer(context.Background(), ticket.ID, bystander.ID, target.ID, nil, nil)
	assertErrorCode(t, err, "FORBIDDEN")
}

func TestTransferInactiveTargetGroupConflict(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	inactive := env.addGroup(t, false)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.Transfer(context.Background(), ticket.ID, agent.ID, inactive.ID, nil, nil)
	assertErrorCode(t, err, "CONFLICT")
}

func TestCancelWritesRecordAndStatus(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	notes := "user withdrew the request"
	updated, err := env.service.Cancel(context.Background(), ticket.ID, agent.ID, "reason-1", &notes)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != domain.TicketStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", updated.Status)
	}

	record, err := env.cancelled.GetByTicket(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("cancellation record missing: %v", err)
	}
	if record.CancelledByID != agent.ID || record.CancelReasonID != "reason-1" {
		t.Fatal("cancellation record must capture actor and reason")
	}
}

func TestCancelInactiveReasonRejected(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.Cancel(context.Background(), ticket.ID, agent.ID, "reason-2", nil)
	assertErrorCode(t, err, "VALIDATION_FAILED")

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status == domain.TicketStatusCancelled {
		t.Fatal("ticket must not cancel with an inactive reason")
	}
}

func TestCancelUnknownReasonRejected(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.Cancel(context.Background(), ticket.ID, agent.ID, "missing", nil)
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestCancelNonAssigneeForbidden(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	bystander := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.Cancel(context.Background(), ticket.ID, bystander.ID, "reason-1", nil)
	assertErrorCode(t, err, "FORBIDDEN")
}

func TestUpdatePriorityAssigneeOnly(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	bystander := env.addUser(t, &group.ID)
	ticket := env.createTicket(t, group.ID, agent.ID)

	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.UpdatePriority(context.Background(), ticket.ID, bystander.ID, domain.TicketPriorityUrgent)
	assertErrorCode(t, err, "FORBIDDEN")

	updated, err := env.service.UpdatePriority(context.Background(), ticket.ID, agent.ID, domain.TicketPriorityUrgent)
	if err != nil {
		t.Fatalf("update priority: %v", err)
	}
	if updated.Priority != domain.TicketPriorityUrgent {
		t.Fatalf("expected URGENT, got %s", updated.Priority)
	}
}

func TestTicketLifecycleEndToEnd(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	target := env.addGroup(t, true)
	agent := env.addUser(t, &group.ID)
	targetAgent := env.addUser(t, &target.ID)

	ticket := env.createTicket(t, group.ID, agent.ID)

	env.clock.Advance(30 * time.Minute)
	if _, err := env.service.Assign(context.Background(), ticket.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	env.clock.Advance(time.Hour)
	if _, err := env.service.Transfer(context.Background(), ticket.ID, agent.ID, target.ID, nil, nil); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	env.clock.Advance(15 * time.Minute)
	reassigned, err := env.service.Assign(context.Background(), ticket.ID, targetAgent.ID)
	if err != nil {
		t.Fatalf("reassign after transfer: %v", err)
	}
	if *reassigned.IdleDuration != time.Hour+45*time.Minute {
		t.Fatalf("idle duration after transfer must span from creation, got %s", *reassigned.IdleDuration)
	}

	if _, err := env.service.Cancel(context.Background(), ticket.ID, targetAgent.ID, "reason-1", nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusCancelled {
		t.Fatalf("expected CANCELLED at end of lifecycle, got %s", stored.Status)
	}
}

func TestGetTicketVisibility(t *testing.T) {
	env := newTicketEnv()
	group := env.addGroup(t, true)
	other := env.addGroup(t, true)
	creator := env.addUser(t, &group.ID)
	outsider := env.addUser(t, &other.ID)
	ticket := env.createTicket(t, group.ID, creator.ID)

	if _, _, err := env.service.GetTicketForUser(context.Background(), creator.ID, ticket.ID); err != nil {
		t.Fatalf("creator must see own ticket: %v", err)
	}

	_, _, err := env.service.GetTicketForUser(context.Background(), outsider.ID, ticket.ID)
	assertErrorCode(t, err, "FORBIDDEN")
}
