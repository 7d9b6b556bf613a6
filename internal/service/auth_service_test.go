package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

type fakeCitizenRepo struct {
	byID    map[string]domain.Citizen
	byEmail map[string]string
}

func newFakeCitizenRepo() *fakeCitizenRepo {
	return &fakeCitizenRepo{byID: map[string]domain.Citizen{}, byEmail: map[string]string{}}
}

func (r *fakeCitizenRepo) Create(_ context.Context, c *domain.Citizen) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.byID[c.ID] = *c
	r.byEmail[c.Email] = c.ID
	return nil
}

func (r *fakeCitizenRepo) Update(_ context.Context, c *domain.Citizen) error {
	if _, ok := r.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[c.ID] = *c
	return nil
}

func (r *fakeCitizenRepo) GetByID(_ context.Context, id string) (*domain.Citizen, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *fakeCitizenRepo) GetByEmail(ctx context.Context, email string) (*domain.Citizen, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

type fakeStaffRepo struct {
	byID    map[string]domain.StaffMember
	byEmail map[string]string
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byID: map[string]domain.StaffMember{}, byEmail: map[string]string{}}
}

func (r *fakeStaffRepo) Create(_ context.Context, s *domain.StaffMember) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.byID[s.ID] = *s
	r.byEmail[s.Email] = s.ID
	return nil
}

func (r *fakeStaffRepo) Update(_ context.Context, s *domain.StaffMember) error {
	if _, ok := r.byID[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *fakeStaffRepo) List(_ context.Context, _ repository.StaffFilter) ([]domain.StaffMember, error) {
	out := make([]domain.StaffMember, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func newAuthService(citizens *fakeCitizenRepo, staff *fakeStaffRepo) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
	}}
	return NewAuthService(cfg, AuthDependencies{CitizenRepo: citizens, StaffRepo: staff})
}

func TestRegisterAndLoginCitizen(t *testing.T) {
	citizens := newFakeCitizenRepo()
	svc := newAuthService(citizens, newFakeStaffRepo())
	ctx := context.Background()

	citizen, token, _, err := svc.RegisterCitizen(ctx, "Ada", "ada@example.gov", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, citizen.ID)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, citizen.ID, claims.SubjectID)
	assert.Equal(t, domain.RoleCitizen, claims.Role)

	_, _, _, err = svc.RegisterCitizen(ctx, "Ada", "ada@example.gov", "hunter22")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	_, _, _, err = svc.LoginCitizen(ctx, "ada@example.gov", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.LoginCitizen(ctx, "ada@example.gov", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, _, _, err = svc.LoginCitizen(ctx, "nobody@example.gov", "hunter22")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestLoginStaffCarriesRoleAndDepartment(t *testing.T) {
	citizens := newFakeCitizenRepo()
	staffRepo := newFakeStaffRepo()
	svc := newAuthService(citizens, staffRepo)
	ctx := context.Background()

	_, _, _, err := svc.RegisterCitizen(ctx, "seed", "seed@example.gov", "pw")
	require.NoError(t, err)

	hash, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)
	admin := &domain.StaffMember{
		Name:         "Grace",
		Email:        "grace@example.gov",
		PasswordHash: hash,
		Role:         domain.RoleDepartmentAdmin,
		DepartmentID: "dept-1",
		Active:       true,
	}
	require.NoError(t, staffRepo.Create(ctx, admin))

	staff, token, _, err := svc.LoginStaff(ctx, "grace@example.gov", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDepartmentAdmin, staff.Role)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDepartmentAdmin, claims.Role)
	assert.Equal(t, "dept-1", claims.DepartmentID)

	admin.Active = false
	require.NoError(t, staffRepo.Update(ctx, admin))
	_, _, _, err = svc.LoginStaff(ctx, "grace@example.gov", "secret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	citizens := newFakeCitizenRepo()
	svc := newAuthService(citizens, newFakeStaffRepo())
	ctx := context.Background()

	citizen, _, _, err := svc.RegisterCitizen(ctx, "Ada", "ada@example.gov", "oldpass")
	require.NoError(t, err)
	actor := domain.Actor{ID: citizen.ID, Role: domain.RoleCitizen}

	err = svc.ChangePassword(ctx, actor, "wrong", "newpass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	require.NoError(t, svc.ChangePassword(ctx, actor, "oldpass", "newpass"))

	_, _, _, err = svc.LoginCitizen(ctx, "ada@example.gov", "newpass")
	require.NoError(t, err)
	_, _, _, err = svc.LoginCitizen(ctx, "ada@example.gov", "oldpass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
