package sites

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

func setupSitesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sites_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
		`CREATE TABLE IF NOT EXISTS sites (
  id TEXT PRIMARY KEY,
  site_name TEXT NOT NULL UNIQUE,
  location TEXT,
  status TEXT NOT NULL DEFAULT 'Planned',
  current_status TEXT NOT NULL,
  manager_id TEXT,
  manager_name TEXT,
  image_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS site_tasks (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  name TEXT NOT NULL,
  position INTEGER NOT NULL,
  is_completed INTEGER NOT NULL DEFAULT 0,
  completed_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS site_updates (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  author_id TEXT NOT NULL,
  author_name TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS site_allocations (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  inventory_item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  unit TEXT NOT NULL,
  allocated_quantity INTEGER NOT NULL DEFAULT 0,
  used_quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS crew_assignments (
  id TEXT PRIMARY KEY,
  worker_id TEXT NOT NULL UNIQUE,
  site_id TEXT NOT NULL,
  role_on_site TEXT,
  assigned_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_protected INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func mustCreateSite(t *testing.T, repo *Repository, name string) *models.Site {
	t.Helper()
	tasks := make([]models.SiteTask, 0, len(DefaultTaskTemplate))
	for i, taskName := range DefaultTaskTemplate {
		tasks = append(tasks, models.SiteTask{Name: taskName, Position: i})
	}
	site := &models.Site{
		SiteName:      name,
		Status:        enums.SiteStatusPlanned,
		CurrentStatus: DerivePhase(tasks),
		Tasks:         tasks,
	}
	require.NoError(t, repo.Create(context.Background(), site))
	return site
}

func TestRepositoryCreatePersistsChecklist(t *testing.T) {
	db := setupSitesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	site := mustCreateSite(t, repo, "Harbor Tower")

	loaded, err := repo.FindByID(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Tasks, len(DefaultTaskTemplate))
	for i, task := range loaded.Tasks {
		assert.Equal(t, DefaultTaskTemplate[i], task.Name)
		assert.Equal(t, i, task.Position)
		assert.False(t, task.IsCompleted)
	}
}

func TestRepositoryTaskRoundTrip(t *testing.T) {
	db := setupSitesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	site := mustCreateSite(t, repo, "Harbor Tower")

	task, err := repo.FindTask(ctx, site.ID, site.Tasks[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Framing & Structure", task.Name)

	now := time.Now().UTC()
	task.IsCompleted = true
	task.CompletedAt = &now
	require.NoError(t, repo.UpdateTask(ctx, task))

	tasks, err := repo.ListTasks(ctx, site.ID)
	require.NoError(t, err)
	assert.True(t, tasks[2].IsCompleted)
	require.NotNil(t, tasks[2].CompletedAt)

	_, err = repo.FindTask(ctx, uuid.New(), site.Tasks[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryTeamBySite(t *testing.T) {
	db := setupSitesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	site := mustCreateSite(t, repo, "Harbor Tower")

	worker := &models.User{
		ID: uuid.New(), Email: "crew@example.com", PasswordHash: "h",
		FirstName: "Pat", LastName: "Lee", Role: enums.UserRoleWorker, IsActive: true,
	}
	require.NoError(t, db.Create(worker).Error)
	require.NoError(t, db.Create(&models.CrewAssignment{
		ID: uuid.New(), WorkerID: worker.ID, SiteID: site.ID, RoleOnSite: "Electrician",
	}).Error)

	teams, err := repo.TeamBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, teams[site.ID], 1)
	member := teams[site.ID][0]
	assert.Equal(t, "Pat Lee", member.Name)
	assert.Equal(t, "crew@example.com", member.Email)
	assert.Equal(t, "Electrician", member.RoleOnSite)
}

func TestRepositoryDeleteCrewAssignments(t *testing.T) {
	db := setupSitesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	site := mustCreateSite(t, repo, "Harbor Tower")
	require.NoError(t, db.Create(&models.CrewAssignment{
		ID: uuid.New(), WorkerID: uuid.New(), SiteID: site.ID,
	}).Error)

	require.NoError(t, repo.DeleteCrewAssignments(ctx, site.ID))

	var count int64
	require.NoError(t, db.Model(&models.CrewAssignment{}).Where("site_id = ?", site.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRepositoryUniqueSiteName(t *testing.T) {
	db := setupSitesTestDB(t)
	repo := NewRepository(db)

	mustCreateSite(t, repo, "Harbor Tower")
	err := repo.Create(context.Background(), &models.Site{
		SiteName:      "Harbor Tower",
		Status:        enums.SiteStatusPlanned,
		CurrentStatus: allTasksCompleteLabel,
	})
	require.Error(t, err)
}
