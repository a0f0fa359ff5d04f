package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// GroupRepository resolves groups and their managers.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	SetManager(ctx context.Context, groupID string, managerID *string) error
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository returns a Postgres-backed implementation.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	const query = `
        INSERT INTO groups (name, manager_id, is_active)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		group.Name,
		group.ManagerID,
		group.IsActive,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	const query = `
        SELECT id, name, manager_id, is_active, created_at, updated_at
        FROM groups WHERE id=$1`
	var group domain.Group
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.ManagerID,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) SetManager(ctx context.Context, groupID string, managerID *string) error {
	const query = `UPDATE groups SET manager_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := persistence.QuerierFrom(ctx, r.pool).Exec(ctx, query, managerID, groupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
