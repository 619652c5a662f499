package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

// ItemWithAllocated pairs an item row with the summed site allocations.
type ItemWithAllocated struct {
	models.InventoryItem
	AllocatedQuantity int `gorm:"column:allocated_quantity"`
	UsedQuantity      int `gorm:"column:used_quantity"`
}

// Repository handles inventory persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to inventory operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repo bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new item row.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads an item by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate loads an item under a row lock. Callers must be inside a
// transaction; the lock holds until that transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns every item ordered by category then name.
func (r *Repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Order("category ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListWithAllocated returns items joined with the sums of their site
// allocations and recorded usage, ordered by category then name.
func (r *Repository) ListWithAllocated(ctx context.Context) ([]ItemWithAllocated, error) {
	var rows []ItemWithAllocated
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("inventory_items.*, COALESCE(SUM(site_allocations.allocated_quantity), 0) AS allocated_quantity, COALESCE(SUM(site_allocations.used_quantity), 0) AS used_quantity").
		Joins("LEFT JOIN site_allocations ON site_allocations.inventory_item_id = inventory_items.id").
		Group("inventory_items.id").
		Order("inventory_items.category ASC, inventory_items.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided item.
func (r *Repository) Update(ctx context.Context, item *models.InventoryItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes the item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id).Error
}

// OutstandingAllocation sums the item's allocations across all sites.
func (r *Repository) OutstandingAllocation(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.SiteAllocation{}).
		Select("SUM(allocated_quantity)").
		Where("inventory_item_id = ?", itemID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
