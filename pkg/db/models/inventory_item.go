package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

// InventoryItem is the warehouse-wide stock ledger entry for one material.
// Quantity is the remaining unallocated stock; Availability is always the
// derived tier for the current quantity and is never written independently.
type InventoryItem struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                  `gorm:"column:name;not null;uniqueIndex"`
	Category     enums.InventoryCategory `gorm:"column:category;not null"`
	Quantity     int                     `gorm:"column:quantity;not null;default:0"`
	Unit         string                  `gorm:"column:unit;not null"`
	Availability enums.Availability      `gorm:"column:availability;not null"`
	LastUpdated  time.Time               `gorm:"column:last_updated;autoUpdateTime"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
}
