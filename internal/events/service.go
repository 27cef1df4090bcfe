package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
	"github.com/lumina-africa/lumina/internal/venues"
)

// Service orchestrates event scheduling.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create schedules a new event organized by the caller. Events start
// unpublished.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, req CreateEventRequest) (*Event, error) {
	if !access.HasPermission(caller.Role, "events", "create") {
		return nil, shared.ErrForbidden
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("%w: event must end after it starts", shared.ErrValidation)
	}
	if req.StartsAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: event cannot start in the past", shared.ErrValidation)
	}
	e := &Event{
		OrganizerID: caller.ID,
		VenueID:     req.VenueID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		City:        venues.NormalizeCity(req.City),
		Category:    req.Category,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		TicketPrice: req.TicketPrice,
		IsPublished: false,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns an event. Unpublished events are visible only to their
// organizer and to admins.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, id int64) (*Event, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished && !s.canManage(caller, e) {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

// ListUpcoming returns published events starting now or later.
func (s *Service) ListUpcoming(ctx context.Context, req ListRequest) ([]Event, shared.Pagination, error) {
	req.IncludeUnpublished = false
	req.OrganizerID = 0
	req.From = s.now()
	if req.City != "" {
		req.City = venues.NormalizeCity(req.City)
	}
	return s.list(ctx, req)
}

// ListOwned returns the caller's events, published or not, past or future.
func (s *Service) ListOwned(ctx context.Context, caller *identity.Identity, req ListRequest) ([]Event, shared.Pagination, error) {
	if !access.HasPermission(caller.Role, "events", "manage") {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	req.IncludeUnpublished = true
	if caller.Role != access.RoleAdmin {
		req.OrganizerID = caller.ID
	}
	return s.list(ctx, req)
}

func (s *Service) list(ctx context.Context, req ListRequest) ([]Event, shared.Pagination, error) {
	events, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return events, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update applies a partial update to an event the caller manages.
func (s *Service) Update(ctx context.Context, caller *identity.Identity, id int64, req UpdateEventRequest) (*Event, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(caller, e) {
		return nil, shared.ErrForbidden
	}
	if req.VenueID != nil {
		e.VenueID = *req.VenueID
	}
	if req.Title != nil {
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.City != nil {
		e.City = venues.NormalizeCity(*req.City)
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.StartsAt != nil {
		e.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		e.EndsAt = *req.EndsAt
	}
	if req.Capacity != nil {
		e.Capacity = *req.Capacity
	}
	if req.TicketPrice != nil {
		e.TicketPrice = *req.TicketPrice
	}
	if req.IsPublished != nil {
		e.IsPublished = *req.IsPublished
	}
	if !e.EndsAt.After(e.StartsAt) {
		return nil, fmt.Errorf("%w: event must end after it starts", shared.ErrValidation)
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an event the caller manages.
func (s *Service) Delete(ctx context.Context, caller *identity.Identity, id int64) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(caller, e) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) canManage(caller *identity.Identity, e *Event) bool {
	if caller == nil {
		return false
	}
	if caller.Role == access.RoleAdmin {
		return true
	}
	return e.OrganizerID == caller.ID && access.HasPermission(caller.Role, "events", "manage")
}
