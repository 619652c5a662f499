package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

// Repository runs the read-only aggregate queries behind reports. Nothing
// here is ever stored; every number is computed per request.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to report queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type siteProgressRow struct {
	SiteID         uuid.UUID        `gorm:"column:site_id"`
	SiteName       string           `gorm:"column:site_name"`
	Status         enums.SiteStatus `gorm:"column:status"`
	TotalTasks     int              `gorm:"column:total_tasks"`
	CompletedTasks int              `gorm:"column:completed_tasks"`
}

func (r *Repository) siteProgress(ctx context.Context) ([]siteProgressRow, error) {
	var rows []siteProgressRow
	err := r.db.WithContext(ctx).
		Model(&models.Site{}).
		Select(`sites.id AS site_id, sites.site_name, sites.status,
			COUNT(site_tasks.id) AS total_tasks,
			COALESCE(SUM(CASE WHEN site_tasks.is_completed THEN 1 ELSE 0 END), 0) AS completed_tasks`).
		Joins("LEFT JOIN site_tasks ON site_tasks.site_id = sites.id").
		Group("sites.id").
		Order("sites.site_name ASC").
		Scan(&rows).Error
	return rows, err
}

type categoryRow struct {
	Category      enums.InventoryCategory `gorm:"column:category"`
	ItemCount     int                     `gorm:"column:item_count"`
	TotalQuantity int                     `gorm:"column:total_quantity"`
}

func (r *Repository) inventoryByCategory(ctx context.Context) ([]categoryRow, error) {
	var rows []categoryRow
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("category, COUNT(*) AS item_count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	return rows, err
}

type allocationRow struct {
	InventoryItemID uuid.UUID `gorm:"column:inventory_item_id"`
	ItemName        string    `gorm:"column:item_name"`
	Unit            string    `gorm:"column:unit"`
	TotalAllocated  int       `gorm:"column:total_allocated"`
	TotalUsed       int       `gorm:"column:total_used"`
	SiteCount       int       `gorm:"column:site_count"`
}

func (r *Repository) allocationSummary(ctx context.Context) ([]allocationRow, error) {
	var rows []allocationRow
	err := r.db.WithContext(ctx).
		Model(&models.SiteAllocation{}).
		Select(`inventory_item_id, item_name, unit,
			COALESCE(SUM(allocated_quantity), 0) AS total_allocated,
			COALESCE(SUM(used_quantity), 0) AS total_used,
			COUNT(DISTINCT site_id) AS site_count`).
		Group("inventory_item_id, item_name, unit").
		Order("item_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) countSitesByStatus(ctx context.Context) (map[enums.SiteStatus]int64, error) {
	type statusRow struct {
		Status enums.SiteStatus `gorm:"column:status"`
		Count  int64            `gorm:"column:count"`
	}
	var rows []statusRow
	err := r.db.WithContext(ctx).
		Model(&models.Site{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.SiteStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *Repository) countActiveUsersByRole(ctx context.Context, role enums.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}

func (r *Repository) countItemsByAvailability(ctx context.Context, availability enums.Availability) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("availability = ?", availability).
		Count(&count).Error
	return count, err
}

func (r *Repository) countUnreadMessages(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}
