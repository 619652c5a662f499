package sites

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

// Repository handles site persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to site operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repo bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a site and its checklist in one insert graph.
func (r *Repository) Create(ctx context.Context, site *models.Site) error {
	if site == nil {
		return fmt.Errorf("site is required")
	}
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	for i := range site.Tasks {
		if site.Tasks[i].ID == uuid.Nil {
			site.Tasks[i].ID = uuid.New()
		}
		site.Tasks[i].SiteID = site.ID
	}
	return r.db.WithContext(ctx).Create(site).Error
}

// FindByID loads a site with its checklist, update log and allocations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	var site models.Site
	if err := r.preloaded(ctx).First(&site, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// List returns every site with children, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	if err := r.preloaded(ctx).
		Order("created_at DESC").
		Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("site_tasks.position ASC")
		}).
		Preload("Updates", func(db *gorm.DB) *gorm.DB {
			return db.Order("site_updates.created_at DESC")
		}).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("site_allocations.item_name ASC")
		})
}

// Update saves the site row only; children are managed through their own
// operations.
func (r *Repository) Update(ctx context.Context, site *models.Site) error {
	if site == nil {
		return fmt.Errorf("site is required")
	}
	return r.db.WithContext(ctx).
		Omit("Tasks", "Updates", "Allocations").
		Save(site).Error
}

// Delete removes the site row. Child rows go with it via FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Site{}, "id = ?", id).Error
}

// FindTask loads one checklist entry scoped to the site.
func (r *Repository) FindTask(ctx context.Context, siteID, taskID uuid.UUID) (*models.SiteTask, error) {
	var task models.SiteTask
	if err := r.db.WithContext(ctx).
		Where("id = ? AND site_id = ?", taskID, siteID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the site's checklist in position order.
func (r *Repository) ListTasks(ctx context.Context, siteID uuid.UUID) ([]models.SiteTask, error) {
	var tasks []models.SiteTask
	if err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask saves a checklist entry.
func (r *Repository) UpdateTask(ctx context.Context, task *models.SiteTask) error {
	if task == nil {
		return fmt.Errorf("task is required")
	}
	return r.db.WithContext(ctx).Save(task).Error
}

// CreateUpdate appends one entry to the site's progress log.
func (r *Repository) CreateUpdate(ctx context.Context, update *models.SiteUpdate) error {
	if update == nil {
		return fmt.Errorf("update is required")
	}
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(update).Error
}

// DeleteCrewAssignments removes every crew assignment pointing at the site.
func (r *Repository) DeleteCrewAssignments(ctx context.Context, siteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CrewAssignment{}, "site_id = ?", siteID).Error
}

// TeamBySite returns the crew roster joined with account names, keyed by
// site. Empty siteIDs means all sites.
func (r *Repository) TeamBySite(ctx context.Context, siteIDs ...uuid.UUID) (map[uuid.UUID][]TeamMemberDTO, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CrewAssignment{}).
		Select("crew_assignments.*, users.first_name, users.last_name, users.email").
		Joins("JOIN users ON users.id = crew_assignments.worker_id").
		Order("crew_assignments.assigned_at ASC")
	if len(siteIDs) > 0 {
		query = query.Where("crew_assignments.site_id IN ?", siteIDs)
	}

	var rows []teamMemberRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]TeamMemberDTO, len(rows))
	for _, row := range rows {
		name := row.FirstName
		if row.LastName != "" {
			if name != "" {
				name += " "
			}
			name += row.LastName
		}
		out[row.SiteID] = append(out[row.SiteID], TeamMemberDTO{
			WorkerID:   row.WorkerID,
			Name:       name,
			Email:      row.Email,
			RoleOnSite: row.RoleOnSite,
			AssignedAt: row.AssignedAt,
		})
	}
	return out, nil
}

type teamMemberRow struct {
	models.CrewAssignment
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
	Email     string `gorm:"column:email"`
}
