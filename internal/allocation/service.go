package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/internal/sites"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
)

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type allocationRepository interface {
	SiteExistsWithTx(tx *gorm.DB, siteID uuid.UUID) (bool, error)
	LockItemWithTx(tx *gorm.DB, itemID uuid.UUID) (*models.InventoryItem, error)
	SaveItemWithTx(tx *gorm.DB, item *models.InventoryItem) error
	FindForSiteItemWithTx(tx *gorm.DB, siteID, itemID uuid.UUID) (*models.SiteAllocation, error)
	CreateWithTx(tx *gorm.DB, alloc *models.SiteAllocation) error
	UpdateWithTx(tx *gorm.DB, alloc *models.SiteAllocation) error
}

type siteViewer interface {
	Get(ctx context.Context, siteID uuid.UUID) (*sites.SiteDTO, error)
}

// Service moves warehouse stock onto sites.
type Service interface {
	Allocate(ctx context.Context, siteID, itemID uuid.UUID, quantity int) (*sites.SiteDTO, error)
	RecordUsage(ctx context.Context, siteID, itemID uuid.UUID, usedQuantity int) (*sites.SiteDTO, error)
}

type service struct {
	tx    transactor
	repo  allocationRepository
	sites siteViewer
}

// NewService builds the allocation service.
func NewService(tx transactor, repo allocationRepository, siteView siteViewer) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if repo == nil {
		return nil, fmt.Errorf("allocation repository required")
	}
	if siteView == nil {
		return nil, fmt.Errorf("site service required")
	}
	return &service{tx: tx, repo: repo, sites: siteView}, nil
}

// Allocate moves quantity units of the item onto the site. The stock check,
// the allocation upsert and the warehouse decrement happen inside one
// transaction with the item row locked, so concurrent calls serialize on the
// item instead of both passing the check on a stale read.
func (s *service) Allocate(ctx context.Context, siteID, itemID uuid.UUID, quantity int) (*sites.SiteDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.SiteExistsWithTx(tx, siteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check site")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}

		item, err := s.repo.LockItemWithTx(tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory item")
		}

		if quantity > item.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to allocate").
				WithDetails(map[string]int{"available": item.Quantity})
		}

		alloc, err := s.repo.FindForSiteItemWithTx(tx, siteID, itemID)
		switch {
		case err == nil:
			alloc.AllocatedQuantity += quantity
			if err := s.repo.UpdateWithTx(tx, alloc); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update allocation")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First allocation of this item to this site: snapshot name and
			// unit so later renames don't rewrite site history.
			alloc = &models.SiteAllocation{
				SiteID:            siteID,
				InventoryItemID:   itemID,
				ItemName:          item.Name,
				Unit:              item.Unit,
				AllocatedQuantity: quantity,
			}
			if err := s.repo.CreateWithTx(tx, alloc); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create allocation")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allocation")
		}

		item.Quantity -= quantity
		item.Availability = enums.AvailabilityForQuantity(item.Quantity)
		if err := s.repo.SaveItemWithTx(tx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate stock")
	}

	return s.sites.Get(ctx, siteID)
}

// RecordUsage marks part of a site's allocation as consumed. Usage can only
// grow and never beyond what was allocated.
func (s *service) RecordUsage(ctx context.Context, siteID, itemID uuid.UUID, usedQuantity int) (*sites.SiteDTO, error) {
	if usedQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "used quantity cannot be negative")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		alloc, err := s.repo.FindForSiteItemWithTx(tx, siteID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "allocation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allocation")
		}

		if usedQuantity > alloc.AllocatedQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "used quantity exceeds allocation").
				WithDetails(map[string]int{"allocated": alloc.AllocatedQuantity})
		}
		if usedQuantity < alloc.UsedQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "used quantity cannot shrink").
				WithDetails(map[string]int{"used": alloc.UsedQuantity})
		}

		alloc.UsedQuantity = usedQuantity
		if err := s.repo.UpdateWithTx(tx, alloc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update allocation")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record usage")
	}

	return s.sites.Get(ctx, siteID)
}
