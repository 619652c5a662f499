package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
)

// SiteProgressDTO reports checklist completion for one site.
type SiteProgressDTO struct {
	SiteID          uuid.UUID        `json:"siteId"`
	SiteName        string           `json:"siteName"`
	Status          enums.SiteStatus `json:"status"`
	TotalTasks      int              `json:"totalTasks"`
	CompletedTasks  int              `json:"completedTasks"`
	PercentComplete float64          `json:"percentComplete"`
}

// CategorySummaryDTO aggregates the inventory catalog per category.
type CategorySummaryDTO struct {
	Category      enums.InventoryCategory `json:"category"`
	ItemCount     int                     `json:"itemCount"`
	TotalQuantity int                     `json:"totalQuantity"`
}

// AllocationSummaryDTO aggregates one item's allocations across all sites.
type AllocationSummaryDTO struct {
	InventoryItemID uuid.UUID `json:"inventoryItemId"`
	ItemName        string    `json:"itemName"`
	Unit            string    `json:"unit"`
	TotalAllocated  int       `json:"totalAllocated"`
	TotalUsed       int       `json:"totalUsed"`
	SiteCount       int       `json:"siteCount"`
}

// OverviewDTO is the dashboard rollup.
type OverviewDTO struct {
	SitesByStatus   map[string]int64 `json:"sitesByStatus"`
	TotalSites      int64            `json:"totalSites"`
	ActiveWorkers   int64            `json:"activeWorkers"`
	LowStockItems   int64            `json:"lowStockItems"`
	OutOfStockItems int64            `json:"outOfStockItems"`
	UnreadMessages  int64            `json:"unreadMessages"`
}

type reportRepository interface {
	siteProgress(ctx context.Context) ([]siteProgressRow, error)
	inventoryByCategory(ctx context.Context) ([]categoryRow, error)
	allocationSummary(ctx context.Context) ([]allocationRow, error)
	countSitesByStatus(ctx context.Context) (map[enums.SiteStatus]int64, error)
	countActiveUsersByRole(ctx context.Context, role enums.UserRole) (int64, error)
	countItemsByAvailability(ctx context.Context, availability enums.Availability) (int64, error)
	countUnreadMessages(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// Service exposes the reporting reads.
type Service interface {
	SiteProgress(ctx context.Context) ([]SiteProgressDTO, error)
	InventoryByCategory(ctx context.Context) ([]CategorySummaryDTO, error)
	AllocationSummary(ctx context.Context) ([]AllocationSummaryDTO, error)
	Overview(ctx context.Context, callerID uuid.UUID) (*OverviewDTO, error)
}

type service struct {
	repo reportRepository
}

// NewService wires the reporting service to its repository.
func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) SiteProgress(ctx context.Context) ([]SiteProgressDTO, error) {
	rows, err := s.repo.siteProgress(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate site progress")
	}
	out := make([]SiteProgressDTO, 0, len(rows))
	for _, row := range rows {
		dto := SiteProgressDTO{
			SiteID:         row.SiteID,
			SiteName:       row.SiteName,
			Status:         row.Status,
			TotalTasks:     row.TotalTasks,
			CompletedTasks: row.CompletedTasks,
		}
		if row.TotalTasks > 0 {
			dto.PercentComplete = float64(row.CompletedTasks) / float64(row.TotalTasks) * 100
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) InventoryByCategory(ctx context.Context) ([]CategorySummaryDTO, error) {
	rows, err := s.repo.inventoryByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate inventory by category")
	}
	out := make([]CategorySummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategorySummaryDTO{
			Category:      row.Category,
			ItemCount:     row.ItemCount,
			TotalQuantity: row.TotalQuantity,
		})
	}
	return out, nil
}

func (s *service) AllocationSummary(ctx context.Context) ([]AllocationSummaryDTO, error) {
	rows, err := s.repo.allocationSummary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate allocation summary")
	}
	out := make([]AllocationSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AllocationSummaryDTO{
			InventoryItemID: row.InventoryItemID,
			ItemName:        row.ItemName,
			Unit:            row.Unit,
			TotalAllocated:  row.TotalAllocated,
			TotalUsed:       row.TotalUsed,
			SiteCount:       row.SiteCount,
		})
	}
	return out, nil
}

func (s *service) Overview(ctx context.Context, callerID uuid.UUID) (*OverviewDTO, error) {
	byStatus, err := s.repo.countSitesByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sites by status")
	}
	overview := &OverviewDTO{SitesByStatus: make(map[string]int64, len(byStatus))}
	for status, count := range byStatus {
		overview.SitesByStatus[status.String()] = count
		overview.TotalSites += count
	}

	if overview.ActiveWorkers, err = s.repo.countActiveUsersByRole(ctx, enums.UserRoleWorker); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count workers")
	}
	if overview.LowStockItems, err = s.repo.countItemsByAvailability(ctx, enums.AvailabilityLowStock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock items")
	}
	if overview.OutOfStockItems, err = s.repo.countItemsByAvailability(ctx, enums.AvailabilityOutOfStock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count out of stock items")
	}
	if overview.UnreadMessages, err = s.repo.countUnreadMessages(ctx, callerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return overview, nil
}
