package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

// ItemDTO is the transport shape for one warehouse item.
type ItemDTO struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Category     enums.InventoryCategory `json:"category"`
	Quantity     int                     `json:"quantity"`
	Unit         string                  `json:"unit"`
	Availability enums.Availability      `json:"availability"`
	LastUpdated  time.Time               `json:"last_updated"`
	CreatedAt    time.Time               `json:"created_at"`
}

// ItemWithAllocationDTO augments an item with the total quantity currently
// parked on sites and how much of it crews have consumed. Quantity remains
// the unallocated warehouse remainder.
type ItemWithAllocationDTO struct {
	ItemDTO
	AllocatedQuantity int `json:"allocated_quantity"`
	UsedQuantity      int `json:"used_quantity"`
}

// CreateItemInput carries the fields accepted when registering a new item.
type CreateItemInput struct {
	Name     string
	Category enums.InventoryCategory
	Quantity int
	Unit     string
}

// UpdateItemInput is a partial update; nil fields are left untouched.
type UpdateItemInput struct {
	Name     *string
	Category *enums.InventoryCategory
	Quantity *int
	Unit     *string
}

// FromModel maps a stored item to its transport shape.
func FromModel(m *models.InventoryItem) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		Availability: m.Availability,
		LastUpdated:  m.LastUpdated,
		CreatedAt:    m.CreatedAt,
	}
}
