package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/api/responses"
	"github.com/buildtrack/buildtrack-backend/api/validators"
	allocationsvc "github.com/buildtrack/buildtrack-backend/internal/allocation"
	inventorysvc "github.com/buildtrack/buildtrack-backend/internal/inventory"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
)

type createItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
	Unit     string `json:"unit" validate:"required"`
}

type updateItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Unit     *string `json:"unit,omitempty"`
}

type allocateRequest struct {
	SiteID      uuid.UUID `json:"siteId" validate:"required"`
	InventoryID uuid.UUID `json:"inventoryId" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1"`
}

type usageRequest struct {
	SiteID       uuid.UUID `json:"siteId" validate:"required"`
	InventoryID  uuid.UUID `json:"inventoryId" validate:"required"`
	UsedQuantity int       `json:"usedQuantity" validate:"min=0"`
}

// InventoryList returns the whole catalog ordered by category then name.
func InventoryList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryListWithAllocation includes the summed allocation per item.
func InventoryListWithAllocation(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListWithAllocation(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func InventoryCreate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseInventoryCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		item, err := svc.Create(r.Context(), inventorysvc.CreateItemInput{
			Name:     body.Name,
			Category: category,
			Quantity: body.Quantity,
			Unit:     body.Unit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func InventoryUpdate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventorysvc.UpdateItemInput{
			Name:     body.Name,
			Quantity: body.Quantity,
			Unit:     body.Unit,
		}
		if body.Category != nil {
			category, err := enums.ParseInventoryCategory(strings.TrimSpace(*body.Category))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &category
		}

		item, err := svc.Update(r.Context(), itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func InventoryDelete(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// InventoryAllocate moves stock from the warehouse into a site bucket and
// returns the refreshed site.
func InventoryAllocate(svc allocationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body allocateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.Allocate(r.Context(), body.SiteID, body.InventoryID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}

// InventoryRecordUsage bumps the consumed counter on a site allocation.
func InventoryRecordUsage(svc allocationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body usageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.RecordUsage(r.Context(), body.SiteID, body.InventoryID, body.UsedQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).
			WithDetails(map[string]string{"param": name})
	}
	return id, nil
}
