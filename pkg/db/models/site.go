package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

// Site is a construction project tracked through a fixed task checklist.
// CurrentStatus is the derived phase label; Status auto-advances to Completed
// when every task is done and never auto-downgrades afterward.
type Site struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteName      string           `gorm:"column:site_name;not null;uniqueIndex"`
	Location      string           `gorm:"column:location"`
	Status        enums.SiteStatus `gorm:"column:status;not null;default:'Planned'"`
	CurrentStatus string           `gorm:"column:current_status;not null"`
	ManagerID     *uuid.UUID       `gorm:"column:manager_id;type:uuid"`
	ManagerName   string           `gorm:"column:manager_name"`
	ImageKey      *string          `gorm:"column:image_key"`
	Tasks         []SiteTask       `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	Updates       []SiteUpdate     `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	Allocations   []SiteAllocation `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SiteTask is one checklist phase. Tasks come from the fixed template at site
// creation and are only ever toggled, never added or removed.
type SiteTask struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID      uuid.UUID  `gorm:"column:site_id;type:uuid;not null;index"`
	Name        string     `gorm:"column:name;not null"`
	Position    int        `gorm:"column:position;not null"`
	IsCompleted bool       `gorm:"column:is_completed;not null;default:false"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// SiteUpdate is one entry of the append-only progress log.
type SiteUpdate struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID     uuid.UUID `gorm:"column:site_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	AuthorName string    `gorm:"column:author_name;not null"`
	Body       string    `gorm:"column:body;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// SiteAllocation is the per-site bucket for one warehouse item. Repeats of
// the same item accumulate into the single row; ItemName and Unit are
// snapshots taken at first allocation.
type SiteAllocation struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID            uuid.UUID `gorm:"column:site_id;type:uuid;not null;uniqueIndex:idx_site_item"`
	InventoryItemID   uuid.UUID `gorm:"column:inventory_item_id;type:uuid;not null;uniqueIndex:idx_site_item"`
	ItemName          string    `gorm:"column:item_name;not null"`
	Unit              string    `gorm:"column:unit;not null"`
	AllocatedQuantity int       `gorm:"column:allocated_quantity;not null;default:0"`
	UsedQuantity      int       `gorm:"column:used_quantity;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
