package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack-backend/internal/users"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	pkgmodels "github.com/buildtrack/buildtrack-backend/pkg/db/models"
	"github.com/buildtrack/buildtrack-backend/pkg/enums"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/security"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserRepository struct {
	data    map[string]*pkgmodels.User
	created *pkgmodels.User
	updated *pkgmodels.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*pkgmodels.User{}}
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*pkgmodels.User, error) {
	for _, user := range s.data {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	user := dto.ToModel()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func (s *stubUserRepository) Update(ctx context.Context, user *pkgmodels.User) error {
	s.updated = user
	return nil
}

type stubAssignmentRepository struct {
	deleted []uuid.UUID
}

func (s *stubAssignmentRepository) DeleteByWorker(ctx context.Context, workerID uuid.UUID) error {
	s.deleted = append(s.deleted, workerID)
	return gorm.ErrRecordNotFound
}

type registerTestSetup struct {
	service     RegisterService
	userRepo    *stubUserRepository
	assignments *stubAssignmentRepository
}

func newRegisterTestSetup(t *testing.T) *registerTestSetup {
	t.Helper()
	userRepo := newStubUserRepository()
	assignments := &stubAssignmentRepository{}
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return userRepo
		},
		AssignmentRepoFactory: func(tx *gorm.DB) registerAssignmentRepository {
			return assignments
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return &registerTestSetup{service: svc, userRepo: userRepo, assignments: assignments}
}

func sampleRegisterRequest(email string, role enums.UserRole) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123!",
		Role:      role,
	}
}

func TestRegisterCreatesWorkerAccount(t *testing.T) {
	setup := newRegisterTestSetup(t)

	created, err := setup.service.Register(context.Background(), sampleRegisterRequest("New@Example.com", enums.UserRoleWorker))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if setup.userRepo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if setup.userRepo.created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %q", setup.userRepo.created.Email)
	}
	if created.Role != enums.UserRoleWorker {
		t.Fatalf("expected worker role, got %s", created.Role)
	}
	if setup.userRepo.created.IsProtected {
		t.Fatalf("registered accounts must not be protected")
	}

	valid, err := security.VerifyPassword("Secret123!", setup.userRepo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash does not verify: valid=%v err=%v", valid, err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	setup := newRegisterTestSetup(t)

	_, err := setup.service.Register(context.Background(), sampleRegisterRequest("boss@example.com", enums.UserRoleAdmin))
	assertCode(t, err, pkgerrors.CodeValidation)
	if setup.userRepo.created != nil {
		t.Fatalf("no user should be created")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setup := newRegisterTestSetup(t)
	setup.userRepo.data["taken@example.com"] = &pkgmodels.User{ID: uuid.New(), Email: "taken@example.com"}

	_, err := setup.service.Register(context.Background(), sampleRegisterRequest("taken@example.com", enums.UserRoleManager))
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeactivateReleasesAssignment(t *testing.T) {
	setup := newRegisterTestSetup(t)
	worker := &pkgmodels.User{ID: uuid.New(), Email: "crew@example.com", Role: enums.UserRoleWorker, IsActive: true}
	setup.userRepo.data[worker.Email] = worker

	if err := setup.service.Deactivate(context.Background(), worker.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if setup.userRepo.updated == nil || setup.userRepo.updated.IsActive {
		t.Fatalf("expected user to be deactivated")
	}
	if len(setup.assignments.deleted) != 1 || setup.assignments.deleted[0] != worker.ID {
		t.Fatalf("expected assignment release for %s", worker.ID)
	}
}

func TestDeactivateProtectedAccountForbidden(t *testing.T) {
	setup := newRegisterTestSetup(t)
	admin := &pkgmodels.User{ID: uuid.New(), Email: "admin@buildtrack.local", Role: enums.UserRoleAdmin, IsActive: true, IsProtected: true}
	setup.userRepo.data[admin.Email] = admin

	err := setup.service.Deactivate(context.Background(), admin.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
	if setup.userRepo.updated != nil {
		t.Fatalf("protected account must not be written")
	}
}

func TestDeactivateUnknownUser(t *testing.T) {
	setup := newRegisterTestSetup(t)
	assertCode(t, setup.service.Deactivate(context.Background(), uuid.New()), pkgerrors.CodeNotFound)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
