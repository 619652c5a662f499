package labor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/internal/users"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
)

type assignmentRepository interface {
	FindByWorker(ctx context.Context, workerID uuid.UUID) (*models.CrewAssignment, error)
	Upsert(ctx context.Context, assignment *models.CrewAssignment) error
	DeleteByWorker(ctx context.Context, workerID uuid.UUID) error
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.CrewAssignment, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error)
}

type siteFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
}

// WorkerDTO is one person on the labor roster: the account plus their
// current site assignment, if any.
type WorkerDTO struct {
	users.UserDTO
	SiteID     *uuid.UUID `json:"site_id,omitempty"`
	SiteName   string     `json:"site_name,omitempty"`
	RoleOnSite string     `json:"role_on_site,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

// Service manages which workers are deployed to which sites.
type Service interface {
	Assign(ctx context.Context, workerID, siteID uuid.UUID, roleOnSite string) (*WorkerDTO, error)
	Unassign(ctx context.Context, workerID uuid.UUID) error
	ListWorkers(ctx context.Context) ([]WorkerDTO, error)
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]WorkerDTO, error)
}

type service struct {
	repo      assignmentRepository
	accounts  accountFinder
	sitesRepo siteFinder
}

// NewService builds a labor service with the provided repositories.
func NewService(repo assignmentRepository, accounts accountFinder, sitesRepo siteFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sitesRepo == nil {
		return nil, fmt.Errorf("sites repository required")
	}
	return &service{repo: repo, accounts: accounts, sitesRepo: sitesRepo}, nil
}

func (s *service) Assign(ctx context.Context, workerID, siteID uuid.UUID, roleOnSite string) (*WorkerDTO, error) {
	worker, err := s.accounts.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "worker not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker")
	}
	if worker.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "administrators are not assignable to sites")
	}

	site, err := s.sitesRepo.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
	}

	assignment := &models.CrewAssignment{
		WorkerID:   workerID,
		SiteID:     siteID,
		RoleOnSite: roleOnSite,
	}
	if err := s.repo.Upsert(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save assignment")
	}

	dto := workerDTO(worker, assignment, site.SiteName)
	return &dto, nil
}

func (s *service) Unassign(ctx context.Context, workerID uuid.UUID) error {
	if err := s.repo.DeleteByWorker(ctx, workerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "worker has no assignment")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
	}
	return nil
}

func (s *service) ListWorkers(ctx context.Context) ([]WorkerDTO, error) {
	workers, err := s.accounts.ListByRole(ctx, enums.UserRoleWorker)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list workers")
	}

	out := make([]WorkerDTO, 0, len(workers))
	for i := range workers {
		worker := &workers[i]
		assignment, err := s.repo.FindByWorker(ctx, worker.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}

		siteName := ""
		if assignment != nil {
			site, err := s.sitesRepo.FindByID(ctx, assignment.SiteID)
			if err == nil {
				siteName = site.SiteName
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assigned site")
			}
		}
		out = append(out, workerDTO(worker, assignment, siteName))
	}
	return out, nil
}

// ListBySite returns the crew currently assigned to one site.
func (s *service) ListBySite(ctx context.Context, siteID uuid.UUID) ([]WorkerDTO, error) {
	site, err := s.sitesRepo.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
	}

	assignments, err := s.repo.ListBySite(ctx, siteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list crew")
	}

	out := make([]WorkerDTO, 0, len(assignments))
	for i := range assignments {
		assignment := &assignments[i]
		worker, err := s.accounts.FindByID(ctx, assignment.WorkerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load crew member")
		}
		out = append(out, workerDTO(worker, assignment, site.SiteName))
	}
	return out, nil
}

func workerDTO(worker *models.User, assignment *models.CrewAssignment, siteName string) WorkerDTO {
	dto := WorkerDTO{UserDTO: *users.FromModel(worker)}
	if assignment != nil {
		siteID := assignment.SiteID
		assignedAt := assignment.AssignedAt
		dto.SiteID = &siteID
		dto.SiteName = siteName
		dto.RoleOnSite = assignment.RoleOnSite
		dto.AssignedAt = &assignedAt
	}
	return dto
}
