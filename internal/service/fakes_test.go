package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// fixedClock is an adjustable clock for deterministic time-based assertions.
type fixedClock struct {
	t time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// snapshotter lets fakeTx capture and restore store state so rollback
// behavior can be asserted without a real database.
type snapshotter interface {
	snapshot() func()
}

type fakeTx struct {
	stores []snapshotter
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(f.stores))
	for _, s := range f.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeTicketRepo struct {
	seq        int
	items      map[string]domain.Ticket
	failUpdate error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{items: map[string]domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.RowVersion = 1
	r.items[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	stored, ok := r.items[ticket.ID]
	if !ok || stored.RowVersion != ticket.RowVersion {
		return repository.ErrVersionConflict
	}
	ticket.RowVersion++
	r.items[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByRegistrationNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, t := range r.items {
		if t.RegistrationNumber == number {
			copied := t
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, t := range r.items {
		if filter.GroupID != nil && t.GroupID != *filter.GroupID {
			continue
		}
		if filter.UserID != nil && (t.UserID == nil || *t.UserID != *filter.UserID) {
			continue
		}
		if filter.CreatedByID != nil && (t.CreatedByID == nil || *t.CreatedByID != *filter.CreatedByID) {
			continue
		}
		if filter.HasProblemType && t.ProblemTypeID == nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if containsStatus(filter.ExcludeStatuses, t.Status) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func (r *fakeTicketRepo) snapshot() func() {
	copied := make(map[string]domain.Ticket, len(r.items))
	for k, v := range r.items {
		copied[k] = v
	}
	seq := r.seq
	return func() {
		r.items = copied
		r.seq = seq
	}
}

type fakeHistoryRepo struct {
	seq     int
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.seq++
	history.ID = fmt.Sprintf("history-%d", r.seq)
	r.entries = append(r.entries, *history)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	out := []domain.TicketHistory{}
	for _, e := range r.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) snapshot() func() {
	copied := append([]domain.TicketHistory{}, r.entries...)
	seq := r.seq
	return func() {
		r.entries = copied
		r.seq = seq
	}
}

type fakeCancelledRepo struct {
	seq     int
	records []domain.CancelledTicket
}

func (r *fakeCancelledRepo) Create(_ context.Context, record *domain.CancelledTicket) error {
	r.seq++
	record.ID = fmt.Sprintf("cancelled-%d", r.seq)
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeCancelledRepo) GetByTicket(_ context.Context, ticketID string) (*domain.CancelledTicket, error) {
	for _, rec := range r.records {
		if rec.TicketID == ticketID {
			copied := rec
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCancelledRepo) snapshot() func() {
	copied := append([]domain.CancelledTicket{}, r.records...)
	seq := r.seq
	return func() {
		r.records = copied
		r.seq = seq
	}
}

type fakeReasonRepo struct {
	reasons map[string]domain.CancelReason
}

func (r *fakeReasonRepo) GetByID(_ context.Context, id string) (*domain.CancelReason, error) {
	reason, ok := r.reasons[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := reason
	return &copied, nil
}

type fakeGroupRepo struct {
	seq    int
	groups map[string]domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[string]domain.Group{}}
}

func (r *fakeGroupRepo) Create(_ context.Context, group *domain.Group) error {
	r.seq++
	group.ID = fmt.Sprintf("group-%d", r.seq)
	r.groups[group.ID] = *group
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := group
	return &copied, nil
}

func (r *fakeGroupRepo) SetManager(_ context.Context, groupID string, managerID *string) error {
	group, ok := r.groups[groupID]
	if !ok {
		return pgx.ErrNoRows
	}
	group.ManagerID = managerID
	r.groups[groupID] = group
	return nil
}

type fakeUserRepo struct {
	seq   int
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeApprovalRepo struct {
	seq      int
	requests map[string]domain.ApprovalRequest
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{requests: map[string]domain.ApprovalRequest{}}
}

func (r *fakeApprovalRepo) Create(_ context.Context, request *domain.ApprovalRequest) error {
	r.seq++
	request.ID = fmt.Sprintf("approval-%d", r.seq)
	request.RowVersion = 1
	r.requests[request.ID] = *request
	return nil
}

func (r *fakeApprovalRepo) Update(_ context.Context, request *domain.ApprovalRequest) error {
	stored, ok := r.requests[request.ID]
	if !ok || stored.RowVersion != request.RowVersion {
		return repository.ErrVersionConflict
	}
	request.RowVersion++
	r.requests[request.ID] = *request
	return nil
}

func (r *fakeApprovalRepo) GetByID(_ context.Context, id string) (*domain.ApprovalRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := request
	return &copied, nil
}

func (r *fakeApprovalRepo) ListPendingByApprover(_ context.Context, approverID string) ([]domain.ApprovalRequest, error) {
	out := []domain.ApprovalRequest{}
	for _, req := range r.requests {
		if req.ApproverID == approverID && req.Status == domain.ApprovalStatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) snapshot() func() {
	copied := make(map[string]domain.ApprovalRequest, len(r.requests))
	for k, v := range r.requests {
		copied[k] = v
	}
	seq := r.seq
	return func() {
		r.requests = copied
		r.seq = seq
	}
}

type fakeIdleLimitRepo struct {
	seq    int
	limits map[string]domain.IdleDurationLimit
}

func newFakeIdleLimitRepo() *fakeIdleLimitRepo {
	return &fakeIdleLimitRepo{limits: map[string]domain.IdleDurationLimit{}}
}

func (r *fakeIdleLimitRepo) Upsert(_ context.Context, limit *domain.IdleDurationLimit) error {
	if existing, ok := r.limits[limit.ProblemTypeID]; ok {
		limit.ID = existing.ID
	} else {
		r.seq++
		limit.ID = fmt.Sprintf("idle-limit-%d", r.seq)
	}
	r.limits[limit.ProblemTypeID] = *limit
	return nil
}

func (r *fakeIdleLimitRepo) GetByProblemType(_ context.Context, problemTypeID string) (*domain.IdleDurationLimit, error) {
	limit, ok := r.limits[problemTypeID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := limit
	return &copied, nil
}

func (r *fakeIdleLimitRepo) List(_ context.Context) ([]domain.IdleDurationLimit, error) {
	out := []domain.IdleDurationLimit{}
	for _, l := range r.limits {
		out = append(out, l)
	}
	return out, nil
}

type fakeSolutionTimeRepo struct {
	seq   int
	times map[string]domain.SolutionTime
}

func newFakeSolutionTimeRepo() *fakeSolutionTimeRepo {
	return &fakeSolutionTimeRepo{times: map[string]domain.SolutionTime{}}
}

func (r *fakeSolutionTimeRepo) Upsert(_ context.Context, st *domain.SolutionTime) error {
	if existing, ok := r.times[st.ProblemTypeID]; ok {
		st.ID = existing.ID
	} else {
		r.seq++
		st.ID = fmt.Sprintf("solution-time-%d", r.seq)
	}
	r.times[st.ProblemTypeID] = *st
	return nil
}

func (r *fakeSolutionTimeRepo) GetByProblemType(_ context.Context, problemTypeID string) (*domain.SolutionTime, error) {
	st, ok := r.times[problemTypeID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := st
	return &copied, nil
}

func (r *fakeSolutionTimeRepo) List(_ context.Context) ([]domain.SolutionTime, error) {
	out := []domain.SolutionTime{}
	for _, st := range r.times {
		out = append(out, st)
	}
	return out, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	RecipientID string
	Message     string
	Type        domain.NotificationType
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID, message string, ntype domain.NotificationType, _, _ *string) error {
	n.sent = append(n.sent, sentNotification{RecipientID: recipientID, Message: message, Type: ntype})
	return nil
}
