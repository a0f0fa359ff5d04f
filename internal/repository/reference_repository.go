package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// CancelReasonRepository looks up cancel reason codes.
type CancelReasonRepository interface {
	GetByID(ctx context.Context, id string) (*domain.CancelReason, error)
}

// ProblemTypeRepository looks up problem types.
type ProblemTypeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ProblemType, error)
}

type cancelReasonRepository struct {
	pool *pgxpool.Pool
}

// NewCancelReasonRepository returns a Postgres-backed implementation.
func NewCancelReasonRepository(pool *pgxpool.Pool) CancelReasonRepository {
	return &cancelReasonRepository{pool: pool}
}

func (r *cancelReasonRepository) GetByID(ctx context.Context, id string) (*domain.CancelReason, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM cancel_reasons WHERE id=$1`
	var reason domain.CancelReason
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&reason.ID,
		&reason.Name,
		&reason.IsActive,
		&reason.CreatedAt,
		&reason.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reason, nil
}

type problemTypeRepository struct {
	pool *pgxpool.Pool
}

// NewProblemTypeRepository returns a Postgres-backed implementation.
func NewProblemTypeRepository(pool *pgxpool.Pool) ProblemTypeRepository {
	return &problemTypeRepository{pool: pool}
}

func (r *problemTypeRepository) GetByID(ctx context.Context, id string) (*domain.ProblemType, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM problem_types WHERE id=$1`
	var pt domain.ProblemType
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&pt.ID,
		&pt.Name,
		&pt.IsActive,
		&pt.CreatedAt,
		&pt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pt, nil
}
