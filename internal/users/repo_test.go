package users

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

	"github.com/buildtrack/buildtrack-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:users_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "foreman@example.com",
		PasswordHash: "hash",
		FirstName:    "Dana",
		LastName:     "Reyes",
		Role:         enums.UserRoleManager,
	})
	require.NoError(t, err)

	byEmail, err := repo.FindByEmail(ctx, "foreman@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.True(t, byEmail.IsActive)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", byID.FirstName)
}

func TestRepositoryListByRoleOrdersAndFilters(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, u := range []CreateUserDTO{
		{Email: "z@example.com", PasswordHash: "h", FirstName: "Ann", LastName: "Zimmer", Role: enums.UserRoleWorker},
		{Email: "a@example.com", PasswordHash: "h", FirstName: "Bo", LastName: "Avery", Role: enums.UserRoleWorker},
		{Email: "m@example.com", PasswordHash: "h", FirstName: "Cat", LastName: "Moss", Role: enums.UserRoleManager},
	} {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	inactive := false
	_, err := repo.Create(ctx, CreateUserDTO{
		Email: "gone@example.com", PasswordHash: "h", FirstName: "Gone", LastName: "Brown",
		Role: enums.UserRoleWorker, IsActive: &inactive,
	})
	require.NoError(t, err)

	workers, err := repo.ListByRole(ctx, enums.UserRoleWorker)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "Avery", workers[0].LastName)
	assert.Equal(t, "Zimmer", workers[1].LastName)

	count, err := repo.CountByRole(ctx, enums.UserRoleWorker)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email: "admin@example.com", PasswordHash: "h", FirstName: "Site", LastName: "Admin",
		Role: enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email: "temp@example.com", PasswordHash: "h", FirstName: "Temp", LastName: "Crew",
		Role: enums.UserRoleWorker,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
