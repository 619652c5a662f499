package sites

import (
	"time"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

// SiteDTO is the full site view returned by reads: the checklist, the update
// log, material allocations, and the assigned crew.
type SiteDTO struct {
	ID            uuid.UUID        `json:"id"`
	SiteName      string           `json:"site_name"`
	Location      string           `json:"location"`
	Status        enums.SiteStatus `json:"status"`
	CurrentStatus string           `json:"current_status"`
	ManagerID     *uuid.UUID       `json:"manager_id,omitempty"`
	ManagerName   string           `json:"manager_name,omitempty"`
	ImageKey      *string          `json:"image_key,omitempty"`
	Tasks         []TaskDTO        `json:"tasks"`
	Updates       []UpdateDTO      `json:"updates"`
	Allocations   []AllocationDTO  `json:"allocations"`
	Team          []TeamMemberDTO  `json:"team"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TaskDTO is one checklist entry.
type TaskDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Position    int        `json:"position"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// UpdateDTO is one progress log entry.
type UpdateDTO struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllocationDTO is the site-side view of one allocated material.
type AllocationDTO struct {
	ID                uuid.UUID `json:"id"`
	InventoryItemID   uuid.UUID `json:"inventory_item_id"`
	ItemName          string    `json:"item_name"`
	Unit              string    `json:"unit"`
	AllocatedQuantity int       `json:"allocated_quantity"`
	UsedQuantity      int       `json:"used_quantity"`
}

// TeamMemberDTO is one crew member on the site roster.
type TeamMemberDTO struct {
	WorkerID   uuid.UUID `json:"worker_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	RoleOnSite string    `json:"role_on_site,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// CreateSiteInput carries the fields accepted when opening a new site.
type CreateSiteInput struct {
	SiteName    string
	Location    string
	ManagerID   *uuid.UUID
	ManagerName string
	ImageKey    *string
}

// FromModel maps a loaded site (with preloaded children) plus its crew roster
// into the transport shape.
func FromModel(m *models.Site, team []TeamMemberDTO) *SiteDTO {
	if m == nil {
		return nil
	}

	tasks := make([]TaskDTO, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		tasks = append(tasks, TaskDTO{
			ID:          task.ID,
			Name:        task.Name,
			Position:    task.Position,
			IsCompleted: task.IsCompleted,
			CompletedAt: task.CompletedAt,
		})
	}

	updates := make([]UpdateDTO, 0, len(m.Updates))
	for _, update := range m.Updates {
		updates = append(updates, UpdateDTO{
			ID:         update.ID,
			AuthorID:   update.AuthorID,
			AuthorName: update.AuthorName,
			Body:       update.Body,
			CreatedAt:  update.CreatedAt,
		})
	}

	allocations := make([]AllocationDTO, 0, len(m.Allocations))
	for _, alloc := range m.Allocations {
		allocations = append(allocations, AllocationDTO{
			ID:                alloc.ID,
			InventoryItemID:   alloc.InventoryItemID,
			ItemName:          alloc.ItemName,
			Unit:              alloc.Unit,
			AllocatedQuantity: alloc.AllocatedQuantity,
			UsedQuantity:      alloc.UsedQuantity,
		})
	}

	if team == nil {
		team = []TeamMemberDTO{}
	}

	return &SiteDTO{
		ID:            m.ID,
		SiteName:      m.SiteName,
		Location:      m.Location,
		Status:        m.Status,
		CurrentStatus: m.CurrentStatus,
		ManagerID:     m.ManagerID,
		ManagerName:   m.ManagerName,
		ImageKey:      m.ImageKey,
		Tasks:         tasks,
		Updates:       updates,
		Allocations:   allocations,
		Team:          team,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
