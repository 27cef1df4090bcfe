package bookings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
	"github.com/lumina-africa/lumina/internal/users"
	"github.com/lumina-africa/lumina/internal/venues"
	"github.com/lumina-africa/lumina/jobs"
)

type stubRepo struct {
	bookings map[int64]*Booking
	nextID   int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{bookings: map[int64]*Booking{}, nextID: 1}
}

func (r *stubRepo) Create(_ context.Context, b *Booking) error {
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *stubRepo) Get(_ context.Context, id int64) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *stubRepo) GetByReference(_ context.Context, ref string) (*Booking, error) {
	for _, b := range r.bookings {
		if b.Reference == ref {
			cp := *b
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubRepo) List(_ context.Context, req ListRequest) ([]Booking, int, error) {
	out := []Booking{}
	for _, b := range r.bookings {
		if req.UserID != 0 && b.UserID != req.UserID {
			continue
		}
		if req.VenueID != 0 && b.VenueID != req.VenueID {
			continue
		}
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	b, ok := r.bookings[id]
	if !ok {
		return shared.ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *stubRepo) HasOverlap(_ context.Context, venueID int64, start, end time.Time) (bool, error) {
	for _, b := range r.bookings {
		if b.VenueID != venueID || !b.Active() {
			continue
		}
		if b.StartDate.Before(end) && b.EndDate.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) ExpirePending(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusPending && !b.ExpiresAt.After(cutoff) {
			b.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

type stubCatalog struct {
	venues map[int64]*venues.Venue
}

func (c *stubCatalog) Get(_ context.Context, id int64) (*venues.Venue, error) {
	v, ok := c.venues[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

type stubDirectory struct {
	profiles map[int64]*users.Profile
}

func (d *stubDirectory) Get(_ context.Context, id int64) (*users.Profile, error) {
	p, ok := d.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

type stubMailer struct {
	sent []jobs.SendEmailPayload
}

func (m *stubMailer) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	m.sent = append(m.sent, payload)
	return &asynq.TaskInfo{}, nil
}

var testNow = time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)

func fixture(t *testing.T) (*Service, *stubRepo) {
	t.Helper()
	svc, repo, _ := fixtureWithMail(t)
	return svc, repo
}

func fixtureWithMail(t *testing.T) (*Service, *stubRepo, *stubMailer) {
	t.Helper()
	repo := newStubRepo()
	catalog := &stubCatalog{venues: map[int64]*venues.Venue{
		1: {ID: 1, OwnerID: 10, Name: "Harbour Hall", City: "Accra", Category: "conference",
			Capacity: 100, PricePerDay: 1000, IsPublished: true},
		2: {ID: 2, OwnerID: 10, Name: "Hidden Loft", City: "Accra", Category: "studio",
			Capacity: 20, PricePerDay: 500, IsPublished: false},
	}}
	directory := &stubDirectory{profiles: map[int64]*users.Profile{
		1: {ID: 1, Email: "c@example.com", FullName: "Chidi Okafor"},
	}}
	mail := &stubMailer{}
	svc := NewService(repo, catalog, directory, mail, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return testNow }
	return svc, repo, mail
}

func customer(id int64) *identity.Identity {
	return &identity.Identity{ID: id, Email: "c@example.com", Role: access.RoleUser, IsActive: true}
}

func venueOwner(id int64) *identity.Identity {
	return &identity.Identity{ID: id, Email: "o@example.com", Role: access.RoleVenueOwner, IsActive: true}
}

func admin() *identity.Identity {
	return &identity.Identity{ID: 99, Email: "a@example.com", Role: access.RoleAdmin, IsActive: true}
}

func createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		VenueID:   1,
		StartDate: testNow.Add(72 * time.Hour),
		EndDate:   testNow.Add(120 * time.Hour),
		Guests:    50,
	}
}

func TestCreateBooking(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.NotEmpty(t, b.Reference)
	assert.Equal(t, testNow.Add(PendingTTL), b.ExpiresAt)
	// Two full days at 1000 per day.
	assert.Equal(t, int64(2000), b.TotalPrice)
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	svc, _ := fixture(t)

	req := createRequest()
	req.Guests = 500
	_, err := svc.Create(context.Background(), customer(1), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsUnpublishedVenue(t *testing.T) {
	svc, _ := fixture(t)

	req := createRequest()
	req.VenueID = 2
	req.Guests = 5
	_, err := svc.Create(context.Background(), customer(1), req)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, _ := fixture(t)

	_, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	req := createRequest()
	req.StartDate = req.StartDate.Add(24 * time.Hour)
	_, err = svc.Create(context.Background(), customer(2), req)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCancelledBookingReleasesDates(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), customer(1), b.Reference)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), customer(2), createRequest())
	assert.NoError(t, err)
}

func TestCancelForbiddenForStranger(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), customer(2), b.Reference)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestConfirmByVenueOwner(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), venueOwner(10), b.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
}

func TestConfirmForbiddenForOtherOwner(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), venueOwner(11), b.Reference)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestConfirmRejectsLapsedHold(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(PendingTTL + time.Minute) }
	_, err = svc.Confirm(context.Background(), venueOwner(10), b.Reference)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestExpireStaleSweep(t *testing.T) {
	svc, repo := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(PendingTTL + time.Minute) }
	n, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByReference(context.Background(), b.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)

	// Dates are free again after the sweep.
	_, err = svc.Create(context.Background(), customer(2), createRequest())
	assert.NoError(t, err)
}

func TestVisibilityScopedToParticipants(t *testing.T) {
	svc, _ := fixture(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), customer(2), b.Reference)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(context.Background(), venueOwner(10), b.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, got.Reference)

	got, err = svc.Get(context.Background(), admin(), b.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, got.Reference)
}

func TestCreateQueuesHoldEmail(t *testing.T) {
	svc, _, mail := fixtureWithMail(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "c@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Subject, "Harbour Hall")
	assert.Contains(t, mail.sent[0].Body, b.Reference)
}

func TestConfirmQueuesConfirmationEmailToBooker(t *testing.T) {
	svc, _, mail := fixtureWithMail(t)

	b, err := svc.Create(context.Background(), customer(1), createRequest())
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), venueOwner(10), b.Reference)
	require.NoError(t, err)

	require.Len(t, mail.sent, 2)
	confirmation := mail.sent[1]
	assert.Equal(t, "c@example.com", confirmation.To)
	assert.Contains(t, confirmation.Subject, "confirmed")
	assert.Contains(t, confirmation.Body, b.Reference)
}

func TestConfirmSurvivesMissingBookerProfile(t *testing.T) {
	svc, _, mail := fixtureWithMail(t)

	// Customer 7 has no directory entry; confirmation still lands, only
	// the mail is skipped.
	b, err := svc.Create(context.Background(), customer(7), createRequest())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), venueOwner(10), b.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Len(t, mail.sent, 1)
}
