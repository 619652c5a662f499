package reports

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reports_%s?mode=memory&cache=shared", uuid.NewString())
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
		`CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  availability TEXT NOT NULL,
  last_updated DATETIME,
  created_at DATETIME
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
		`CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  sender_name TEXT NOT NULL,
  body TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func seedSiteWithTasks(t *testing.T, db *gorm.DB, name string, status enums.SiteStatus, completed, total int) uuid.UUID {
	t.Helper()
	site := models.Site{
		ID:            uuid.New(),
		SiteName:      name,
		Status:        status,
		CurrentStatus: "Working on: something",
	}
	require.NoError(t, db.Create(&site).Error)
	for i := 0; i < total; i++ {
		task := models.SiteTask{
			ID:          uuid.New(),
			SiteID:      site.ID,
			Name:        fmt.Sprintf("Task %d", i+1),
			Position:    i,
			IsCompleted: i < completed,
		}
		require.NoError(t, db.Create(&task).Error)
	}
	return site.ID
}

func TestSiteProgressAggregates(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedSiteWithTasks(t, db, "Harbor Tower", enums.SiteStatusActive, 3, 7)
	seedSiteWithTasks(t, db, "Mill Renovation", enums.SiteStatusPlanned, 0, 0)

	rows, err := repo.siteProgress(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Harbor Tower", rows[0].SiteName)
	assert.Equal(t, 7, rows[0].TotalTasks)
	assert.Equal(t, 3, rows[0].CompletedTasks)

	assert.Equal(t, "Mill Renovation", rows[1].SiteName)
	assert.Equal(t, 0, rows[1].TotalTasks)
	assert.Equal(t, 0, rows[1].CompletedTasks)
}

func TestInventoryByCategoryAggregates(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	items := []models.InventoryItem{
		{ID: uuid.New(), Name: "Cement Bags", Category: enums.InventoryCategoryCement, Quantity: 120, Unit: "bags", Availability: enums.AvailabilityInStock},
		{ID: uuid.New(), Name: "Quick-Set Cement", Category: enums.InventoryCategoryCement, Quantity: 30, Unit: "bags", Availability: enums.AvailabilityLowStock},
		{ID: uuid.New(), Name: "Rebar", Category: enums.InventoryCategorySteel, Quantity: 0, Unit: "rods", Availability: enums.AvailabilityOutOfStock},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	rows, err := repo.inventoryByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, enums.InventoryCategoryCement, rows[0].Category)
	assert.Equal(t, 2, rows[0].ItemCount)
	assert.Equal(t, 150, rows[0].TotalQuantity)

	assert.Equal(t, enums.InventoryCategorySteel, rows[1].Category)
	assert.Equal(t, 1, rows[1].ItemCount)
	assert.Equal(t, 0, rows[1].TotalQuantity)
}

func TestAllocationSummaryAggregatesAcrossSites(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itemID := uuid.New()
	siteA := seedSiteWithTasks(t, db, "Site A", enums.SiteStatusActive, 0, 1)
	siteB := seedSiteWithTasks(t, db, "Site B", enums.SiteStatusActive, 0, 1)

	allocations := []models.SiteAllocation{
		{ID: uuid.New(), SiteID: siteA, InventoryItemID: itemID, ItemName: "Cement Bags", Unit: "bags", AllocatedQuantity: 40, UsedQuantity: 10},
		{ID: uuid.New(), SiteID: siteB, InventoryItemID: itemID, ItemName: "Cement Bags", Unit: "bags", AllocatedQuantity: 25, UsedQuantity: 25},
	}
	for i := range allocations {
		require.NoError(t, db.Create(&allocations[i]).Error)
	}

	rows, err := repo.allocationSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, itemID, rows[0].InventoryItemID)
	assert.Equal(t, 65, rows[0].TotalAllocated)
	assert.Equal(t, 35, rows[0].TotalUsed)
	assert.Equal(t, 2, rows[0].SiteCount)
}

func TestOverviewCounts(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedSiteWithTasks(t, db, "Site A", enums.SiteStatusActive, 0, 1)
	seedSiteWithTasks(t, db, "Site B", enums.SiteStatusActive, 0, 1)
	seedSiteWithTasks(t, db, "Site C", enums.SiteStatusCompleted, 1, 1)

	byStatus, err := repo.countSitesByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[enums.SiteStatusActive])
	assert.Equal(t, int64(1), byStatus[enums.SiteStatusCompleted])

	workers := []models.User{
		{ID: uuid.New(), Email: "w1@example.com", PasswordHash: "x", FirstName: "A", LastName: "B", Role: enums.UserRoleWorker, IsActive: true},
		{ID: uuid.New(), Email: "w2@example.com", PasswordHash: "x", FirstName: "C", LastName: "D", Role: enums.UserRoleWorker, IsActive: false},
		{ID: uuid.New(), Email: "m1@example.com", PasswordHash: "x", FirstName: "E", LastName: "F", Role: enums.UserRoleManager, IsActive: true},
	}
	for i := range workers {
		require.NoError(t, db.Create(&workers[i]).Error)
	}
	count, err := repo.countActiveUsersByRole(ctx, enums.UserRoleWorker)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	item := models.InventoryItem{ID: uuid.New(), Name: "Sand", Category: enums.InventoryCategorySand, Quantity: 12, Unit: "tons", Availability: enums.AvailabilityLowStock}
	require.NoError(t, db.Create(&item).Error)
	low, err := repo.countItemsByAvailability(ctx, enums.AvailabilityLowStock)
	require.NoError(t, err)
	assert.Equal(t, int64(1), low)

	recipient := uuid.New()
	msg := models.Message{ID: uuid.New(), RecipientID: recipient, SenderID: uuid.New(), SenderName: "E F", Body: "hello"}
	require.NoError(t, db.Create(&msg).Error)
	unread, err := repo.countUnreadMessages(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
