package labor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

// Repository handles crew assignment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to labor operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByWorker loads the worker's current assignment, if any.
func (r *Repository) FindByWorker(ctx context.Context, workerID uuid.UUID) (*models.CrewAssignment, error) {
	var assignment models.CrewAssignment
	if err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Upsert creates the worker's assignment or moves it to another site. A
// worker is on at most one site at a time.
func (r *Repository) Upsert(ctx context.Context, assignment *models.CrewAssignment) error {
	if assignment == nil {
		return fmt.Errorf("assignment is required")
	}
	var existing models.CrewAssignment
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", assignment.WorkerID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.SiteID = assignment.SiteID
		existing.RoleOnSite = assignment.RoleOnSite
		*assignment = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	case err == gorm.ErrRecordNotFound:
		if assignment.ID == uuid.Nil {
			assignment.ID = uuid.New()
		}
		return r.db.WithContext(ctx).Create(assignment).Error
	default:
		return err
	}
}

// DeleteByWorker removes the worker's assignment.
func (r *Repository) DeleteByWorker(ctx context.Context, workerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.CrewAssignment{}, "worker_id = ?", workerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBySite returns every assignment on the site.
func (r *Repository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.CrewAssignment, error) {
	var assignments []models.CrewAssignment
	if err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
