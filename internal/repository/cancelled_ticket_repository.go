package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// CancelledTicketRepository stores cancellation records.
type CancelledTicketRepository interface {
	Create(ctx context.Context, record *domain.CancelledTicket) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.CancelledTicket, error)
}

type cancelledTicketRepository struct {
	pool *pgxpool.Pool
}

// NewCancelledTicketRepository builds repository.
func NewCancelledTicketRepository(pool *pgxpool.Pool) CancelledTicketRepository {
	return &cancelledTicketRepository{pool: pool}
}

func (r *cancelledTicketRepository) Create(ctx context.Context, record *domain.CancelledTicket) error {
	const query = `
        INSERT INTO cancelled_tickets (ticket_id, cancelled_by_id, cancel_reason_id, notes, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		record.TicketID,
		record.CancelledByID,
		record.CancelReasonID,
		record.Notes,
		record.CreatedAt,
	).Scan(&record.ID)
}

func (r *cancelledTicketRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.CancelledTicket, error) {
	const query = `
        SELECT id, ticket_id, cancelled_by_id, cancel_reason_id, notes, created_at
        FROM cancelled_tickets WHERE ticket_id=$1`
	var record domain.CancelledTicket
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&record.ID,
		&record.TicketID,
		&record.CancelledByID,
		&record.CancelReasonID,
		&record.Notes,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
