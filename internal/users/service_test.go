package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
)

type stubRepo struct {
	profiles map[int64]*Profile
	updates  map[string]any
}

func newStubRepo(profiles ...*Profile) *stubRepo {
	r := &stubRepo{profiles: map[int64]*Profile{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *stubRepo) Get(_ context.Context, id int64) (*Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *stubRepo) List(_ context.Context, req ListRequest) ([]Profile, int, error) {
	out := []Profile{}
	for _, p := range r.profiles {
		if req.Role != "" && p.Role != req.Role {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *stubRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	if _, ok := r.profiles[id]; !ok {
		return shared.ErrNotFound
	}
	r.updates = updates
	if v, ok := updates["full_name"].(string); ok {
		r.profiles[id].FullName = v
	}
	if v, ok := updates["city"].(string); ok {
		r.profiles[id].City = v
	}
	return nil
}

func (r *stubRepo) SetActive(_ context.Context, id int64, active bool) error {
	p, ok := r.profiles[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func profileFixture(id int64, role access.Role) *Profile {
	return &Profile{
		ID:        id,
		Email:     "user@example.com",
		FullName:  "Amina Diallo",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func ident(id int64, role access.Role) *identity.Identity {
	return &identity.Identity{ID: id, Email: "caller@example.com", Role: role, IsActive: true}
}

func TestGetOwnProfile(t *testing.T) {
	repo := newStubRepo(profileFixture(1, access.RoleUser))
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), ident(1, access.RoleUser), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestGetOtherProfileForbiddenForRegularUser(t *testing.T) {
	repo := newStubRepo(profileFixture(1, access.RoleUser), profileFixture(2, access.RoleUser))
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), ident(1, access.RoleUser), 2)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGetOtherProfileAllowedForAdmin(t *testing.T) {
	repo := newStubRepo(profileFixture(2, access.RoleUser))
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), ident(1, access.RoleAdmin), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)
}

func TestListRequiresAdmin(t *testing.T) {
	svc := NewService(newStubRepo())

	_, _, err := svc.List(context.Background(), ident(1, access.RoleOrganizer), ListRequest{Page: 1, PerPage: 20})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListRejectsUnknownRoleFilter(t *testing.T) {
	svc := NewService(newStubRepo())

	_, _, err := svc.List(context.Background(), ident(1, access.RoleAdmin), ListRequest{Role: "superuser", Page: 1, PerPage: 20})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListFiltersByRole(t *testing.T) {
	repo := newStubRepo(profileFixture(1, access.RoleUser), profileFixture(2, access.RoleVenueOwner))
	svc := NewService(repo)

	profiles, pg, err := svc.List(context.Background(), ident(9, access.RoleAdmin), ListRequest{Role: access.RoleVenueOwner, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, access.RoleVenueOwner, profiles[0].Role)
	assert.Equal(t, 1, pg.Total)
}

func TestUpdateProfileTrimsFields(t *testing.T) {
	repo := newStubRepo(profileFixture(1, access.RoleUser))
	svc := NewService(repo)

	name := "  Kwame Mensah "
	city := " Accra "
	p, err := svc.UpdateProfile(context.Background(), ident(1, access.RoleUser), UpdateProfileRequest{FullName: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Kwame Mensah", p.FullName)
	assert.Equal(t, "Accra", p.City)
	assert.NotContains(t, repo.updates, "phone")
}

func TestSetActiveRequiresAdmin(t *testing.T) {
	repo := newStubRepo(profileFixture(2, access.RoleUser))
	svc := NewService(repo)

	err := svc.SetActive(context.Background(), ident(1, access.RoleVenueOwner), 2, false)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestAdminCannotDeactivateSelf(t *testing.T) {
	repo := newStubRepo(profileFixture(1, access.RoleAdmin))
	svc := NewService(repo)

	err := svc.SetActive(context.Background(), ident(1, access.RoleAdmin), 1, false)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdminDeactivatesAccount(t *testing.T) {
	repo := newStubRepo(profileFixture(2, access.RoleUser))
	svc := NewService(repo)

	err := svc.SetActive(context.Background(), ident(1, access.RoleAdmin), 2, false)
	require.NoError(t, err)
	assert.False(t, repo.profiles[2].IsActive)
}
