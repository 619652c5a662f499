package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/internal/labor"
	"github.com/buildtrack/buildtrack-backend/internal/users"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	"github.com/buildtrack/buildtrack-backend/pkg/db"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/security"
)

// RegisterService handles roster account creation and offboarding. Both are
// admin-only at the route layer.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type registerAssignmentRepository interface {
	DeleteByWorker(ctx context.Context, workerID uuid.UUID) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner              txRunner
	UserRepoFactory       func(tx *gorm.DB) registerUserRepository
	AssignmentRepoFactory func(tx *gorm.DB) registerAssignmentRepository
	PasswordConfig        config.PasswordConfig
}

type registerService struct {
	tx             txRunner
	userRepoFor    func(tx *gorm.DB) registerUserRepository
	assignmentsFor func(tx *gorm.DB) registerAssignmentRepository
	passwordCfg    config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	if params.AssignmentRepoFactory == nil {
		params.AssignmentRepoFactory = func(tx *gorm.DB) registerAssignmentRepository {
			return labor.NewRepository(tx)
		}
	}
	return &registerService{
		tx:             params.TxRunner,
		userRepoFor:    params.UserRepoFactory,
		assignmentsFor: params.AssignmentRepoFactory,
		passwordCfg:    params.PasswordConfig,
	}, nil
}

// DefaultRegisterService wires the registration flow to the live database.
func DefaultRegisterService(client *db.Client, passwordCfg config.PasswordConfig) (RegisterService, error) {
	return NewRegisterService(RegisterServiceParams{
		TxRunner:       client,
		PasswordConfig: passwordCfg,
	})
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	// Admin accounts come from the startup seed only.
	if req.Role != enums.UserRoleManager && req.Role != enums.UserRoleWorker {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be manager or worker")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepoFor(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    firstName,
			LastName:     lastName,
			Role:         req.Role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *registerService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepoFor(tx)

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if user.IsProtected {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this account cannot be modified or deleted")
		}

		user.IsActive = false
		if err := userRepo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user")
		}

		// A deactivated worker cannot keep a site assignment.
		if err := s.assignmentsFor(tx).DeleteByWorker(ctx, userID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release assignment")
		}
		return nil
	})
}
