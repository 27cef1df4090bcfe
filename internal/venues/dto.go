package venues

// CreateVenueRequest carries a new venue listing.
type CreateVenueRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	City        string `json:"city" validate:"required,max=100"`
	Address     string `json:"address" validate:"max=300"`
	Category    string `json:"category" validate:"required,oneof=conference wedding concert restaurant outdoor studio"`
	Capacity    int    `json:"capacity" validate:"required,min=1,max=100000"`
	PricePerDay int64  `json:"price_per_day" validate:"required,min=0"`
}

// UpdateVenueRequest carries a partial venue update.
type UpdateVenueRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Category    *string `json:"category,omitempty" validate:"omitempty,oneof=conference wedding concert restaurant outdoor studio"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100000"`
	PricePerDay *int64  `json:"price_per_day,omitempty" validate:"omitempty,min=0"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// ListRequest filters public and owner venue listings.
type ListRequest struct {
	City     string
	Category string
	Search   string
	OwnerID  int64
	// IncludeUnpublished is set for owner and admin listings only.
	IncludeUnpublished bool
	Page               int
	PerPage            int
}
