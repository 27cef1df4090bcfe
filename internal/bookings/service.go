package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
	"github.com/lumina-africa/lumina/internal/users"
	"github.com/lumina-africa/lumina/internal/venues"
	"github.com/lumina-africa/lumina/jobs"
)

// VenueCatalog is the slice of the venues package the booking flow needs.
type VenueCatalog interface {
	Get(ctx context.Context, id int64) (*venues.Venue, error)
}

// UserDirectory resolves a booking's user to a notifiable profile.
// *users.PGRepository satisfies it.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*users.Profile, error)
}

// Mailer queues transactional email off the request path. *jobs.Client
// satisfies it; a nil Mailer disables notifications.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service orchestrates the booking lifecycle.
type Service struct {
	repo      Repository
	venues    VenueCatalog
	directory UserDirectory
	mail      Mailer
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, catalog VenueCatalog, directory UserDirectory, mail Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, venues: catalog, directory: directory, mail: mail, logger: logger, now: time.Now}
}

func (s *Service) sendMail(ctx context.Context, payload jobs.SendEmailPayload) {
	if s.mail == nil {
		return
	}
	if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
		s.logger.Warn("enqueue mail", "to", payload.To, "error", err)
	}
}

// Create reserves a venue for the caller. The booking starts pending and
// holds its dates for PendingTTL; the venue owner must confirm before the
// hold lapses.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, req CreateBookingRequest) (*Booking, error) {
	if !access.HasPermission(caller.Role, "bookings", "create") {
		return nil, shared.ErrForbidden
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: booking must end after it starts", shared.ErrValidation)
	}
	now := s.now()
	if req.StartDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: booking cannot start in the past", shared.ErrValidation)
	}

	venue, err := s.venues.Get(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsPublished {
		return nil, shared.ErrNotFound
	}
	if req.Guests > venue.Capacity {
		return nil, fmt.Errorf("%w: venue capacity is %d", shared.ErrValidation, venue.Capacity)
	}

	overlap, err := s.repo.HasOverlap(ctx, venue.ID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fmt.Errorf("%w: venue is already booked for those dates", shared.ErrAlreadyExists)
	}

	days := int64(req.EndDate.Sub(req.StartDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	b := &Booking{
		Reference:  uuid.NewString(),
		UserID:     caller.ID,
		VenueID:    venue.ID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Guests:     req.Guests,
		Status:     StatusPending,
		TotalPrice: days * venue.PricePerDay,
		ExpiresAt:  now.Add(PendingTTL),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("booking created", "reference", b.Reference, "venue_id", venue.ID, "user_id", caller.ID)
	s.sendMail(ctx, jobs.SendEmailPayload{
		To:      caller.Email,
		Subject: "Booking received: " + venue.Name,
		Body: fmt.Sprintf("Your booking %s for %s is pending. The venue owner has until %s to confirm it.",
			b.Reference, venue.Name, b.ExpiresAt.Format(time.RFC1123)),
	})
	return b, nil
}

// Get returns a booking visible to the caller: the booking's user, the
// venue's owner, or an admin.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, ref string) (*Booking, error) {
	b, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	ok, err := s.canView(ctx, caller, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

// ListMine returns the caller's bookings.
func (s *Service) ListMine(ctx context.Context, caller *identity.Identity, req ListRequest) ([]Booking, shared.Pagination, error) {
	if !access.HasPermission(caller.Role, "bookings", "view") {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	req.UserID = caller.ID
	req.VenueID = 0
	return s.list(ctx, req)
}

// ListForVenue returns a venue's bookings for its owner or an admin.
func (s *Service) ListForVenue(ctx context.Context, caller *identity.Identity, venueID int64, req ListRequest) ([]Booking, shared.Pagination, error) {
	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if caller.Role != access.RoleAdmin && venue.OwnerID != caller.ID {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	req.UserID = 0
	req.VenueID = venueID
	return s.list(ctx, req)
}

func (s *Service) list(ctx context.Context, req ListRequest) ([]Booking, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Cancel releases a booking's dates. The booking's user or an admin may
// cancel while the booking is still active.
func (s *Service) Cancel(ctx context.Context, caller *identity.Identity, ref string) (*Booking, error) {
	b, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.ID && caller.Role != access.RoleAdmin {
		return nil, shared.ErrForbidden
	}
	if !b.Active() {
		return nil, fmt.Errorf("%w: booking is %s", shared.ErrValidation, b.Status)
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	return b, nil
}

// Confirm locks in a pending booking. Only the venue's owner or an admin
// may confirm, and only while the hold has not lapsed.
func (s *Service) Confirm(ctx context.Context, caller *identity.Identity, ref string) (*Booking, error) {
	b, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	venue, err := s.venues.Get(ctx, b.VenueID)
	if err != nil {
		return nil, err
	}
	if caller.Role != access.RoleAdmin {
		if venue.OwnerID != caller.ID || !access.HasPermission(caller.Role, "bookings", "confirm") {
			return nil, shared.ErrForbidden
		}
	}
	if b.Status != StatusPending {
		return nil, fmt.Errorf("%w: booking is %s", shared.ErrValidation, b.Status)
	}
	if s.now().After(b.ExpiresAt) {
		return nil, fmt.Errorf("%w: booking hold has lapsed", shared.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, StatusConfirmed); err != nil {
		return nil, err
	}
	b.Status = StatusConfirmed
	s.logger.Info("booking confirmed", "reference", b.Reference, "venue_id", venue.ID)
	if s.directory != nil {
		if profile, err := s.directory.Get(ctx, b.UserID); err != nil {
			s.logger.Warn("booker lookup for confirmation mail", "booking_id", b.ID, "error", err)
		} else {
			s.sendMail(ctx, jobs.SendEmailPayload{
				To:      profile.Email,
				Subject: "Booking confirmed: " + venue.Name,
				Body: fmt.Sprintf("Your booking %s for %s from %s to %s is confirmed.",
					b.Reference, venue.Name, b.StartDate.Format("2 Jan 2006"), b.EndDate.Format("2 Jan 2006")),
			})
		}
	}
	return b, nil
}

// ExpireStale releases pending bookings whose hold deadline has passed.
// Called by the background sweep.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired stale bookings", "count", n)
	}
	return n, nil
}

func (s *Service) canView(ctx context.Context, caller *identity.Identity, b *Booking) (bool, error) {
	if caller == nil {
		return false, nil
	}
	if caller.Role == access.RoleAdmin || b.UserID == caller.ID {
		return true, nil
	}
	venue, err := s.venues.Get(ctx, b.VenueID)
	if err != nil {
		return false, err
	}
	return venue.OwnerID == caller.ID, nil
}
