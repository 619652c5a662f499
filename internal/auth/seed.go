package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/internal/users"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	"github.com/buildtrack/buildtrack-backend/pkg/db"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
	"github.com/buildtrack/buildtrack-backend/pkg/security"
)

// EnsureSeedAdmin creates the protected administrator account if it does not
// exist yet. The row is ordinary apart from is_protected; every later check
// against it goes through the flag, not a hardcoded identity.
func EnsureSeedAdmin(ctx context.Context, client *db.Client, passwordCfg config.PasswordConfig, seedCfg config.SeedConfig, logg *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(seedCfg.AdminEmail))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seed admin email is required")
	}

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check seed admin")
		}

		passwordHash, err := security.HashPassword(seedCfg.AdminPassword, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash seed password")
		}

		if _, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    seedCfg.AdminFirstName,
			LastName:     seedCfg.AdminLastName,
			Role:         enums.UserRoleAdmin,
			IsProtected:  true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create seed admin")
		}

		logg.Info(logg.WithField(ctx, "email", email), "seeded administrator account")
		return nil
	})
}
