package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	GroupID         *string
	UserID          *string
	CreatedByID     *string
	Statuses        []domain.TicketStatus
	ExcludeStatuses []domain.TicketStatus
	HasProblemType  bool
	Limit           int
	Offset          int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update applies a compare-and-swap on row_version and returns
	// ErrVersionConflict when the row changed underneath the caller.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByRegistrationNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const ticketColumns = `id, registration_number, group_id, user_id, created_by_id, problem_type_id,
       subject, description, status, priority, assigned_date, idle_duration_seconds,
       row_version, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (registration_number, group_id, user_id, created_by_id, problem_type_id,
                             subject, description, status, priority, assigned_date, idle_duration_seconds,
                             created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
        RETURNING id, row_version`
	return r.db(ctx).QueryRow(ctx, query,
		ticket.RegistrationNumber,
		ticket.GroupID,
		ticket.UserID,
		ticket.CreatedByID,
		ticket.ProblemTypeID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedDate,
		durationToSeconds(ticket.IdleDuration),
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.RowVersion)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET group_id=$1, user_id=$2, problem_type_id=$3, subject=$4, description=$5,
            status=$6, priority=$7, assigned_date=$8, idle_duration_seconds=$9,
            row_version=row_version+1, updated_at=$10
        WHERE id=$11 AND row_version=$12`
	cmd, err := r.db(ctx).Exec(ctx, query,
		ticket.GroupID,
		ticket.UserID,
		ticket.ProblemTypeID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedDate,
		durationToSeconds(ticket.IdleDuration),
		ticket.UpdatedAt,
		ticket.ID,
		ticket.RowVersion,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ticket.RowVersion++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByRegistrationNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE registration_number=$1 ORDER BY created_at DESC LIMIT 1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		idleSecs *int64
	)
	if err := r.db(ctx).QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.RegistrationNumber,
		&ticket.GroupID,
		&ticket.UserID,
		&ticket.CreatedByID,
		&ticket.ProblemTypeID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedDate,
		&idleSecs,
		&ticket.RowVersion,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.IdleDuration = secondsToDuration(idleSecs)
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		clauses = append(clauses, fmt.Sprintf("group_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.ExcludeStatuses) > 0 {
		placeholders := make([]string, len(filter.ExcludeStatuses))
		for i, status := range filter.ExcludeStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status NOT IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.HasProblemType {
		clauses = append(clauses, "problem_type_id IS NOT NULL")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket   domain.Ticket
			idleSecs *int64
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.RegistrationNumber,
			&ticket.GroupID,
			&ticket.UserID,
			&ticket.CreatedByID,
			&ticket.ProblemTypeID,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.AssignedDate,
			&idleSecs,
			&ticket.RowVersion,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ticket.IdleDuration = secondsToDuration(idleSecs)
		result = append(result, ticket)
	}
	return result, rows.Err()
}
