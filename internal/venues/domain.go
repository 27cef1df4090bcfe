package venues

import "time"

// Venue is a bookable space listed by a venue owner.
type Venue struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city"`
	Address     string    `json:"address,omitempty"`
	Category    string    `json:"category"`
	Capacity    int       `json:"capacity"`
	PricePerDay int64     `json:"price_per_day"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
