package reviews

import "time"

// Review is a customer's rating of a venue. One review per user per venue.
type Review struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venue_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Aggregate summarizes a venue's ratings.
type Aggregate struct {
	VenueID int64   `json:"venue_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
