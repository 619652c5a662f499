package inventory

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

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  availability TEXT NOT NULL,
  last_updated DATETIME,
  created_at DATETIME
);`
	allocations := `
CREATE TABLE IF NOT EXISTS site_allocations (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  inventory_item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  unit TEXT NOT NULL,
  allocated_quantity INTEGER NOT NULL DEFAULT 0,
  used_quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(allocations).Error)
	return db
}

func mustCreateItem(t *testing.T, repo *Repository, name string, category enums.InventoryCategory, qty int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:         name,
		Category:     category,
		Quantity:     qty,
		Unit:         "units",
		Availability: enums.AvailabilityForQuantity(qty),
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestRepositoryListOrdersByCategoryThenName(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	mustCreateItem(t, repo, "PVC Pipe", enums.InventoryCategoryPlumbing, 10)
	mustCreateItem(t, repo, "Rebar", enums.InventoryCategorySteel, 20)
	mustCreateItem(t, repo, "Cement Bags", enums.InventoryCategoryCement, 30)
	mustCreateItem(t, repo, "Angle Iron", enums.InventoryCategorySteel, 5)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	got := make([]string, 0, len(items))
	for _, i := range items {
		got = append(got, i.Name)
	}
	assert.Equal(t, []string{"Cement Bags", "PVC Pipe", "Angle Iron", "Rebar"}, got)
}

func TestRepositoryListWithAllocatedSums(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateItem(t, repo, "Bricks", enums.InventoryCategoryBricks, 500)
	other := mustCreateItem(t, repo, "Sand", enums.InventoryCategorySand, 40)

	for _, alloc := range []models.SiteAllocation{
		{ID: uuid.New(), SiteID: uuid.New(), InventoryItemID: item.ID, ItemName: item.Name, Unit: item.Unit, AllocatedQuantity: 120, UsedQuantity: 45},
		{ID: uuid.New(), SiteID: uuid.New(), InventoryItemID: item.ID, ItemName: item.Name, Unit: item.Unit, AllocatedQuantity: 80, UsedQuantity: 30},
	} {
		require.NoError(t, db.Create(&alloc).Error)
	}

	rows, err := repo.ListWithAllocated(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]ItemWithAllocated{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	assert.Equal(t, 200, byName["Bricks"].AllocatedQuantity)
	assert.Equal(t, 75, byName["Bricks"].UsedQuantity)
	assert.Equal(t, 0, byName["Sand"].AllocatedQuantity)
	assert.Equal(t, 0, byName["Sand"].UsedQuantity)
	assert.Equal(t, 40, byName["Sand"].Quantity)

	outstanding, err := repo.OutstandingAllocation(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), outstanding)

	none, err := repo.OutstandingAllocation(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)
}

func TestRepositoryUniqueNameViolation(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	mustCreateItem(t, repo, "Rebar", enums.InventoryCategorySteel, 10)
	err := repo.Create(context.Background(), &models.InventoryItem{
		Name:         "Rebar",
		Category:     enums.InventoryCategorySteel,
		Quantity:     5,
		Unit:         "tons",
		Availability: enums.AvailabilityLowStock,
	})
	require.Error(t, err)
}
