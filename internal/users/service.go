package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
)

// ListRequest filters the admin user listing.
type ListRequest struct {
	Role    access.Role
	Search  string
	Page    int
	PerPage int
}

// UpdateProfileRequest carries a partial self-service profile update.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=100"`
}

// Service orchestrates profile operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches one profile. Non-admins may only read their own.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, id int64) (*Profile, error) {
	if caller.ID != id && !access.HasPermission(caller.Role, "users", "view") {
		return nil, shared.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// List returns profiles for admin screens.
func (s *Service) List(ctx context.Context, caller *identity.Identity, req ListRequest) ([]Profile, shared.Pagination, error) {
	if !access.HasPermission(caller.Role, "users", "view") {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	if req.Role != "" && !req.Role.Valid() {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown role filter", shared.ErrValidation)
	}
	profiles, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return profiles, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// UpdateProfile applies a self-service update to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, caller *identity.Identity, req UpdateProfileRequest) (*Profile, error) {
	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if err := s.repo.Update(ctx, caller.ID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, caller.ID)
}

// SetActive toggles another account's activation; deactivation invalidates
// the account's tokens at next resolution. Admin only, and admins cannot
// deactivate themselves.
func (s *Service) SetActive(ctx context.Context, caller *identity.Identity, id int64, active bool) error {
	if !access.HasPermission(caller.Role, "users", "edit") {
		return shared.ErrForbidden
	}
	if caller.ID == id && !active {
		return fmt.Errorf("%w: cannot deactivate own account", shared.ErrValidation)
	}
	return s.repo.SetActive(ctx, id, active)
}
