package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
)

const nameUniqueConstraint = "idx_inventory_items_name"

type itemRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	ListWithAllocated(ctx context.Context) ([]ItemWithAllocated, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	OutstandingAllocation(ctx context.Context, itemID uuid.UUID) (int64, error)
}

// Service exposes warehouse inventory operations.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	List(ctx context.Context) ([]ItemDTO, error)
	ListWithAllocation(ctx context.Context) ([]ItemWithAllocationDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo itemRepository
}

// NewService builds an inventory service with the provided repository.
func NewService(repo itemRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}

	item := &models.InventoryItem{
		Name:         name,
		Category:     input.Category,
		Quantity:     input.Quantity,
		Unit:         unit,
		Availability: enums.AvailabilityForQuantity(input.Quantity),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, nameUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, "item name already exists").
				WithDetails(map[string]string{"name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out, nil
}

func (s *service) ListWithAllocation(ctx context.Context) ([]ItemWithAllocationDTO, error) {
	rows, err := s.repo.ListWithAllocated(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory with allocations")
	}
	out := make([]ItemWithAllocationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ItemWithAllocationDTO{
			ItemDTO:           *FromModel(&rows[i].InventoryItem),
			AllocatedQuantity: rows[i].AllocatedQuantity,
			UsedQuantity:      rows[i].UsedQuantity,
		})
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
		}
		item.Name = name
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		item.Category = *input.Category
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
		}
		item.Unit = unit
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		item.Quantity = *input.Quantity
	}
	// Availability always tracks the stored quantity, whether or not this
	// update touched it.
	item.Availability = enums.AvailabilityForQuantity(item.Quantity)

	if err := s.repo.Update(ctx, item); err != nil {
		if db.IsUniqueViolation(err, nameUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, "item name already exists").
				WithDetails(map[string]string{"name": item.Name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	return FromModel(item), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}

	outstanding, err := s.repo.OutstandingAllocation(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check outstanding allocations")
	}
	if outstanding > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "item has outstanding site allocations").
			WithDetails(map[string]int64{"allocated_quantity": outstanding})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	return nil
}
