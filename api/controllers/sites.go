package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/api/middleware"
	"github.com/buildtrack/buildtrack-backend/api/responses"
	"github.com/buildtrack/buildtrack-backend/api/validators"
	sitesvc "github.com/buildtrack/buildtrack-backend/internal/sites"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
)

type createSiteRequest struct {
	SiteName  string     `json:"siteName" validate:"required"`
	Location  string     `json:"location,omitempty"`
	ManagerID *uuid.UUID `json:"managerId,omitempty"`
	ImageKey  *string    `json:"imageKey,omitempty"`
}

// patchSiteRequest carries exactly one of four mutations: a task toggle, a
// progress comment, a status change, or a manager reassignment.
type patchSiteRequest struct {
	TaskID      *uuid.UUID `json:"taskId,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
	Comment     *string    `json:"comment,omitempty"`
	Status      *string    `json:"status,omitempty"`
	ManagerID   *uuid.UUID `json:"managerId,omitempty"`
}

func SitesList(svc sitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sites)
	}
}

func SiteGet(svc sitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := parseIDParam(r, "siteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.Get(r.Context(), siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}

func SiteCreate(svc sitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createSiteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.Create(r.Context(), sitesvc.CreateSiteInput{
			SiteName:  body.SiteName,
			Location:  body.Location,
			ManagerID: body.ManagerID,
			ImageKey:  body.ImageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, site)
	}
}

// SitePatch dispatches on which subset of fields the body carries.
func SitePatch(svc sitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := parseIDParam(r, "siteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body patchSiteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var site *sitesvc.SiteDTO
		switch {
		case body.TaskID != nil:
			if body.IsCompleted == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "isCompleted is required with taskId"))
				return
			}
			site, err = svc.ToggleTask(r.Context(), siteID, *body.TaskID, *body.IsCompleted)
		case body.Comment != nil:
			authorID, authorName, authorErr := requestActor(r)
			if authorErr != nil {
				responses.WriteError(r.Context(), logg, w, authorErr)
				return
			}
			site, err = svc.AddUpdate(r.Context(), siteID, authorID, authorName, validators.SanitizeString(*body.Comment, 2000))
		case body.Status != nil:
			status, parseErr := enums.ParseSiteStatus(strings.TrimSpace(*body.Status))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			site, err = svc.SetStatus(r.Context(), siteID, status)
		case body.ManagerID != nil:
			site, err = svc.ReassignManager(r.Context(), siteID, *body.ManagerID)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no recognized fields in patch body"))
			return
		}

		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}

func SiteDelete(svc sitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := parseIDParam(r, "siteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), siteID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func requestActor(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, middleware.UserNameFromContext(r.Context()), nil
}
