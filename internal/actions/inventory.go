package actions

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// RegisterInventoryActions binds inventory actions into the registry.
// Deleting inventory is a soft delete: the item's active flag is cleared and
// the row is kept.
func RegisterInventoryActions(registry *Registry, items repository.InventoryRepository) {
	registry.Register(EntityInventory, ActionDelete, func(ctx context.Context, entityID string) error {
		return items.SoftDelete(ctx, entityID)
	})
}
