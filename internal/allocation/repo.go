package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

// Repository runs the transaction-scoped reads and writes behind an
// allocation. Every method takes the caller's transaction; nothing here
// opens its own.
type Repository struct{}

// NewRepository constructs the allocation repo.
func NewRepository() *Repository {
	return &Repository{}
}

// SiteExistsWithTx reports whether the site row exists.
func (r *Repository) SiteExistsWithTx(tx *gorm.DB, siteID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	var count int64
	if err := tx.Model(&models.Site{}).Where("id = ?", siteID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockItemWithTx loads the item under FOR UPDATE. The lock holds until the
// transaction ends.
func (r *Repository) LockItemWithTx(tx *gorm.DB, itemID uuid.UUID) (*models.InventoryItem, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var item models.InventoryItem
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItemWithTx persists the item using the provided transaction.
func (r *Repository) SaveItemWithTx(tx *gorm.DB, item *models.InventoryItem) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return tx.Save(item).Error
}

// FindForSiteItemWithTx loads the single allocation row for a (site, item)
// pair.
func (r *Repository) FindForSiteItemWithTx(tx *gorm.DB, siteID, itemID uuid.UUID) (*models.SiteAllocation, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var alloc models.SiteAllocation
	if err := tx.
		Where("site_id = ? AND inventory_item_id = ?", siteID, itemID).
		First(&alloc).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

// CreateWithTx inserts a new allocation row.
func (r *Repository) CreateWithTx(tx *gorm.DB, alloc *models.SiteAllocation) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if alloc == nil {
		return fmt.Errorf("allocation is required")
	}
	if alloc.ID == uuid.Nil {
		alloc.ID = uuid.New()
	}
	return tx.Create(alloc).Error
}

// UpdateWithTx persists the allocation row.
func (r *Repository) UpdateWithTx(tx *gorm.DB, alloc *models.SiteAllocation) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if alloc == nil {
		return fmt.Errorf("allocation is required")
	}
	return tx.Save(alloc).Error
}
