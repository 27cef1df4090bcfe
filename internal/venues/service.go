package venues

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
)

var cityCaser = cases.Title(language.English)

// NormalizeCity canonicalizes city names so that "accra", "ACCRA" and
// " Accra " all index and filter as the same value.
func NormalizeCity(city string) string {
	return cityCaser.String(strings.ToLower(strings.TrimSpace(city)))
}

// Service orchestrates venue listings.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new venue owned by the caller. New venues start
// unpublished until the owner publishes them.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, req CreateVenueRequest) (*Venue, error) {
	if !access.HasPermission(caller.Role, "venues", "create") {
		return nil, shared.ErrForbidden
	}
	v := &Venue{
		OwnerID:     caller.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		City:        NormalizeCity(req.City),
		Address:     strings.TrimSpace(req.Address),
		Category:    req.Category,
		Capacity:    req.Capacity,
		PricePerDay: req.PricePerDay,
		IsPublished: false,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns a venue. Unpublished venues are visible only to their
// owner and to admins.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, id int64) (*Venue, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPublished && !s.canManage(caller, v) {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

// List returns published venues matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Venue, shared.Pagination, error) {
	req.IncludeUnpublished = false
	req.OwnerID = 0
	if req.City != "" {
		req.City = NormalizeCity(req.City)
	}
	return s.list(ctx, req)
}

// ListOwned returns the caller's venues, published or not.
func (s *Service) ListOwned(ctx context.Context, caller *identity.Identity, req ListRequest) ([]Venue, shared.Pagination, error) {
	if !access.HasPermission(caller.Role, "venues", "manage") {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	req.IncludeUnpublished = true
	if caller.Role != access.RoleAdmin {
		req.OwnerID = caller.ID
	}
	return s.list(ctx, req)
}

func (s *Service) list(ctx context.Context, req ListRequest) ([]Venue, shared.Pagination, error) {
	venues, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return venues, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update applies a partial update to a venue the caller manages.
func (s *Service) Update(ctx context.Context, caller *identity.Identity, id int64, req UpdateVenueRequest) (*Venue, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(caller, v) {
		return nil, shared.ErrForbidden
	}
	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		v.Description = strings.TrimSpace(*req.Description)
	}
	if req.City != nil {
		v.City = NormalizeCity(*req.City)
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.Category != nil {
		v.Category = *req.Category
	}
	if req.Capacity != nil {
		v.Capacity = *req.Capacity
	}
	if req.PricePerDay != nil {
		v.PricePerDay = *req.PricePerDay
	}
	if req.IsPublished != nil {
		v.IsPublished = *req.IsPublished
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a venue the caller manages.
func (s *Service) Delete(ctx context.Context, caller *identity.Identity, id int64) error {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(caller, v) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) canManage(caller *identity.Identity, v *Venue) bool {
	if caller == nil {
		return false
	}
	if caller.Role == access.RoleAdmin {
		return true
	}
	return v.OwnerID == caller.ID && access.HasPermission(caller.Role, "venues", "manage")
}
