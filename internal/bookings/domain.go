package bookings

import "time"

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// PendingTTL is how long an unconfirmed booking holds its dates before
// the expiry sweep releases them.
const PendingTTL = 30 * time.Minute

// Booking reserves a venue for a date range. The reference is the
// customer-facing identifier; the numeric ID stays internal.
type Booking struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	UserID     int64     `json:"user_id"`
	VenueID    int64     `json:"venue_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Guests     int       `json:"guests"`
	Status     Status    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the booking still holds its dates.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
