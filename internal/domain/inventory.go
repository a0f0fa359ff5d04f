package domain

import "time"

// InventoryItem is a tracked IT asset. Deletion is always a soft delete and
// only happens through an approved request.
type InventoryItem struct {
	ID             string
	AssetTag       string
	Name           string
	GroupID        *string
	AssignedUserID *string
	WarrantyEnd    *time.Time
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
