package bookings

import "time"

// CreateBookingRequest reserves a venue for a date range.
type CreateBookingRequest struct {
	VenueID   int64     `json:"venue_id" validate:"required,min=1"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Guests    int       `json:"guests" validate:"required,min=1"`
}

// ListRequest filters booking listings.
type ListRequest struct {
	UserID  int64
	VenueID int64
	Status  Status
	Page    int
	PerPage int
}
