package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// InventoryRepository accesses IT assets. Deletion is a soft delete only.
type InventoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	SoftDelete(ctx context.Context, id string) error
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository returns a Postgres-backed implementation.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

func (r *inventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	const query = `
        SELECT id, asset_tag, name, group_id, assigned_user_id, warranty_end, is_active, created_at, updated_at
        FROM inventory_items WHERE id=$1`
	var item domain.InventoryItem
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.AssetTag,
		&item.Name,
		&item.GroupID,
		&item.AssignedUserID,
		&item.WarrantyEnd,
		&item.IsActive,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE inventory_items SET is_active=FALSE, updated_at=NOW() WHERE id=$1 AND is_active=TRUE`
	cmd, err := persistence.QuerierFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
