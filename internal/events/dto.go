package events

import "time"

// CreateEventRequest carries a new event.
type CreateEventRequest struct {
	VenueID     int64     `json:"venue_id" validate:"omitempty,min=1"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	City        string    `json:"city" validate:"required,max=100"`
	Category    string    `json:"category" validate:"required,oneof=music conference festival sports theatre community"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=500000"`
	TicketPrice int64     `json:"ticket_price" validate:"min=0"`
}

// UpdateEventRequest carries a partial event update.
type UpdateEventRequest struct {
	VenueID     *int64     `json:"venue_id,omitempty" validate:"omitempty,min=1"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	City        *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,oneof=music conference festival sports theatre community"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1,max=500000"`
	TicketPrice *int64     `json:"ticket_price,omitempty" validate:"omitempty,min=0"`
	IsPublished *bool      `json:"is_published,omitempty"`
}

// ListRequest filters event listings.
type ListRequest struct {
	City        string
	Category    string
	Search      string
	OrganizerID int64
	// From restricts results to events starting at or after this instant.
	From               time.Time
	IncludeUnpublished bool
	Page               int
	PerPage            int
}
