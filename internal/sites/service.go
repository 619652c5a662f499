package sites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
)

const siteNameUniqueConstraint = "idx_sites_site_name"

type siteRepository interface {
	Create(ctx context.Context, site *models.Site) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	List(ctx context.Context) ([]models.Site, error)
	Update(ctx context.Context, site *models.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindTask(ctx context.Context, siteID, taskID uuid.UUID) (*models.SiteTask, error)
	ListTasks(ctx context.Context, siteID uuid.UUID) ([]models.SiteTask, error)
	UpdateTask(ctx context.Context, task *models.SiteTask) error
	CreateUpdate(ctx context.Context, update *models.SiteUpdate) error
	DeleteCrewAssignments(ctx context.Context, siteID uuid.UUID) error
	TeamBySite(ctx context.Context, siteIDs ...uuid.UUID) (map[uuid.UUID][]TeamMemberDTO, error)
}

type managerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes construction site operations.
type Service interface {
	Create(ctx context.Context, input CreateSiteInput) (*SiteDTO, error)
	List(ctx context.Context) ([]SiteDTO, error)
	Get(ctx context.Context, siteID uuid.UUID) (*SiteDTO, error)
	ToggleTask(ctx context.Context, siteID, taskID uuid.UUID, isCompleted bool) (*SiteDTO, error)
	AddUpdate(ctx context.Context, siteID, authorID uuid.UUID, authorName, body string) (*SiteDTO, error)
	SetStatus(ctx context.Context, siteID uuid.UUID, status enums.SiteStatus) (*SiteDTO, error)
	ReassignManager(ctx context.Context, siteID, managerID uuid.UUID) (*SiteDTO, error)
	Delete(ctx context.Context, siteID uuid.UUID) error
}

type service struct {
	repo  siteRepository
	users managerFinder
	now   func() time.Time
}

// NewService builds a site service with the provided repositories.
func NewService(repo siteRepository, users managerFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("site repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: users, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateSiteInput) (*SiteDTO, error) {
	name := strings.TrimSpace(input.SiteName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site name is required")
	}

	managerName := strings.TrimSpace(input.ManagerName)
	if input.ManagerID != nil {
		manager, err := s.users.FindByID(ctx, *input.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manager")
		}
		managerName = manager.FullName()
	}

	tasks := make([]models.SiteTask, 0, len(DefaultTaskTemplate))
	for i, taskName := range DefaultTaskTemplate {
		tasks = append(tasks, models.SiteTask{
			Name:     taskName,
			Position: i,
		})
	}

	site := &models.Site{
		SiteName:      name,
		Location:      strings.TrimSpace(input.Location),
		Status:        enums.SiteStatusPlanned,
		CurrentStatus: DerivePhase(tasks),
		ManagerID:     input.ManagerID,
		ManagerName:   managerName,
		ImageKey:      input.ImageKey,
		Tasks:         tasks,
	}
	if err := s.repo.Create(ctx, site); err != nil {
		if db.IsUniqueViolation(err, siteNameUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, "site name already exists").
				WithDetails(map[string]string{"site_name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create site")
	}

	return FromModel(site, nil), nil
}

func (s *service) List(ctx context.Context) ([]SiteDTO, error) {
	sitesList, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sites")
	}

	teams, err := s.repo.TeamBySite(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site teams")
	}

	out := make([]SiteDTO, 0, len(sitesList))
	for i := range sitesList {
		out = append(out, *FromModel(&sitesList[i], teams[sitesList[i].ID]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, siteID uuid.UUID) (*SiteDTO, error) {
	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	teams, err := s.repo.TeamBySite(ctx, siteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site team")
	}
	return FromModel(site, teams[siteID]), nil
}

func (s *service) ToggleTask(ctx context.Context, siteID, taskID uuid.UUID, isCompleted bool) (*SiteDTO, error) {
	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.FindTask(ctx, siteID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load task")
	}

	if task.IsCompleted != isCompleted {
		task.IsCompleted = isCompleted
		if isCompleted {
			at := s.now().UTC()
			task.CompletedAt = &at
		} else {
			task.CompletedAt = nil
		}
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task")
		}
	}

	tasks, err := s.repo.ListTasks(ctx, siteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tasks")
	}

	site.CurrentStatus = DerivePhase(tasks)
	// Finishing the checklist completes the site. The reverse is not true:
	// reopening a task keeps the status where it was.
	if AllTasksComplete(tasks) {
		site.Status = enums.SiteStatusCompleted
	}
	if err := s.repo.Update(ctx, site); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update site")
	}

	return s.Get(ctx, siteID)
}

func (s *service) AddUpdate(ctx context.Context, siteID, authorID uuid.UUID, authorName, body string) (*SiteDTO, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "update body is required")
	}

	if _, err := s.loadSite(ctx, siteID); err != nil {
		return nil, err
	}

	update := &models.SiteUpdate{
		SiteID:     siteID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append site update")
	}

	return s.Get(ctx, siteID)
}

func (s *service) SetStatus(ctx context.Context, siteID uuid.UUID, status enums.SiteStatus) (*SiteDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid site status")
	}

	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	site.Status = status
	if err := s.repo.Update(ctx, site); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update site")
	}
	return s.Get(ctx, siteID)
}

func (s *service) ReassignManager(ctx context.Context, siteID, managerID uuid.UUID) (*SiteDTO, error) {
	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	manager, err := s.users.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manager")
	}
	if manager.Role == enums.UserRoleWorker {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site manager must hold the manager or admin role")
	}

	site.ManagerID = &manager.ID
	site.ManagerName = manager.FullName()
	if err := s.repo.Update(ctx, site); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update site")
	}
	return s.Get(ctx, siteID)
}

func (s *service) Delete(ctx context.Context, siteID uuid.UUID) error {
	if _, err := s.loadSite(ctx, siteID); err != nil {
		return err
	}

	if err := s.repo.DeleteCrewAssignments(ctx, siteID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release site crew")
	}
	if err := s.repo.Delete(ctx, siteID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete site")
	}
	return nil
}

func (s *service) loadSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	site, err := s.repo.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
	}
	return site, nil
}
