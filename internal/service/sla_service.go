package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLAService computes idle and combined SLA breaches on demand. Nothing is
// stored; every call re-evaluates against the current configuration.
type SLAService struct {
	tickets       repository.TicketRepository
	idleLimits    repository.IdleDurationLimitRepository
	solutionTimes repository.SolutionTimeRepository
	now           func() time.Time
}

// SLADependencies bundles repositories for SLA service.
type SLADependencies struct {
	TicketRepo       repository.TicketRepository
	IdleLimitRepo    repository.IdleDurationLimitRepository
	SolutionTimeRepo repository.SolutionTimeRepository
	Now              func() time.Time
}

// TicketBreach describes one breaching ticket.
type TicketBreach struct {
	Ticket        domain.Ticket
	IdleDuration  time.Duration
	Allowed       time.Duration
	FormattedIdle string
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SLAService{
		tickets:       deps.TicketRepo,
		idleLimits:    deps.IdleLimitRepo,
		solutionTimes: deps.SolutionTimeRepo,
		now:           now,
	}
}

// GetIdleBreachTickets returns tickets whose idle time exceeds the configured
// limit for their problem type. Tickets whose problem type has no configured
// limit never breach and are skipped.
func (s *SLAService) GetIdleBreachTickets(ctx context.Context) ([]TicketBreach, error) {
	tickets, err := s.candidateTickets(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	limits := map[string]*domain.IdleDurationLimit{}
	breaches := []TicketBreach{}

	for _, ticket := range tickets {
		limit, err := s.idleLimitFor(ctx, limits, *ticket.ProblemTypeID)
		if err != nil {
			return nil, err
		}
		if limit == nil {
			continue
		}
		idle := util.IdleDuration(ticket.CreatedAt, ticket.AssignedDate, now)
		if idle > limit.TimeToAssign {
			breaches = append(breaches, TicketBreach{
				Ticket:        ticket,
				IdleDuration:  idle,
				Allowed:       limit.TimeToAssign,
				FormattedIdle: util.FormatDuration(idle),
			})
		}
	}
	return breaches, nil
}

// GetSlaBreachTickets returns, among the caller's own created tickets, those
// whose age exceeds idle limit plus solution time. Tickets whose problem type
// has no configured solution time are skipped; a missing idle limit counts
// as zero.
func (s *SLAService) GetSlaBreachTickets(ctx context.Context, callerID string) ([]TicketBreach, error) {
	tickets, err := s.candidateTickets(ctx, &callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	limits := map[string]*domain.IdleDurationLimit{}
	solutions := map[string]*domain.SolutionTime{}
	breaches := []TicketBreach{}

	for _, ticket := range tickets {
		solution, err := s.solutionTimeFor(ctx, solutions, *ticket.ProblemTypeID)
		if err != nil {
			return nil, err
		}
		if solution == nil {
			continue
		}
		limit, err := s.idleLimitFor(ctx, limits, *ticket.ProblemTypeID)
		if err != nil {
			return nil, err
		}

		allowed := solution.TimeToSolve
		if limit != nil {
			allowed += limit.TimeToAssign
		}
		age := now.Sub(ticket.CreatedAt)
		if age > allowed {
			breaches = append(breaches, TicketBreach{
				Ticket:        ticket,
				IdleDuration:  age,
				Allowed:       allowed,
				FormattedIdle: util.FormatDuration(age),
			})
		}
	}
	return breaches, nil
}

func (s *SLAService) candidateTickets(ctx context.Context, createdByID *string) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		CreatedByID:     createdByID,
		HasProblemType:  true,
		ExcludeStatuses: []domain.TicketStatus{domain.TicketStatusClosed, domain.TicketStatusCancelled},
		Limit:           1000,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

func (s *SLAService) idleLimitFor(ctx context.Context, cache map[string]*domain.IdleDurationLimit, problemTypeID string) (*domain.IdleDurationLimit, error) {
	if limit, ok := cache[problemTypeID]; ok {
		return limit, nil
	}
	limit, err := s.idleLimits.GetByProblemType(ctx, problemTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			cache[problemTypeID] = nil
			return nil, nil
		}
		return nil, util.MapError(err)
	}
	cache[problemTypeID] = limit
	return limit, nil
}

func (s *SLAService) solutionTimeFor(ctx context.Context, cache map[string]*domain.SolutionTime, problemTypeID string) (*domain.SolutionTime, error) {
	if st, ok := cache[problemTypeID]; ok {
		return st, nil
	}
	st, err := s.solutionTimes.GetByProblemType(ctx, problemTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			cache[problemTypeID] = nil
			return nil, nil
		}
		return nil, util.MapError(err)
	}
	cache[problemTypeID] = st
	return st, nil
}

// UpsertIdleLimit writes the per-problem-type assignment limit, replacing any
// existing record for that problem type.
func (s *SLAService) UpsertIdleLimit(ctx context.Context, problemTypeID string, timeToAssign time.Duration) (*domain.IdleDurationLimit, error) {
	if timeToAssign <= 0 {
		return nil, util.NewValidationError("time_to_assign must be positive", nil)
	}
	limit := &domain.IdleDurationLimit{
		ProblemTypeID: problemTypeID,
		TimeToAssign:  timeToAssign,
		UpdatedAt:     s.now(),
	}
	if err := s.idleLimits.Upsert(ctx, limit); err != nil {
		return nil, util.MapError(err)
	}
	return limit, nil
}

// UpsertSolutionTime writes the per-problem-type solution target, replacing
// any existing record for that problem type.
func (s *SLAService) UpsertSolutionTime(ctx context.Context, problemTypeID string, timeToSolve time.Duration) (*domain.SolutionTime, error) {
	if timeToSolve <= 0 {
		return nil, util.NewValidationError("time_to_solve must be positive", nil)
	}
	st := &domain.SolutionTime{
		ProblemTypeID: problemTypeID,
		TimeToSolve:   timeToSolve,
		UpdatedAt:     s.now(),
	}
	if err := s.solutionTimes.Upsert(ctx, st); err != nil {
		return nil, util.MapError(err)
	}
	return st, nil
}
