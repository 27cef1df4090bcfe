package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/auth"
	"github.com/lumina-africa/lumina/internal/bookings"
	"github.com/lumina-africa/lumina/internal/events"
	"github.com/lumina-africa/lumina/internal/guard"
	"github.com/lumina-africa/lumina/internal/nav"
	"github.com/lumina-africa/lumina/internal/observability"
	"github.com/lumina-africa/lumina/internal/reviews"
	"github.com/lumina-africa/lumina/internal/users"
	"github.com/lumina-africa/lumina/internal/venues"
	"github.com/lumina-africa/lumina/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Table           *access.Table
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	VenuesHandler   *venues.Handler
	EventsHandler   *events.Handler
	BookingsHandler *bookings.Handler
	ReviewsHandler  *reviews.Handler
	GuardHandler    *guard.Handler
	NavHandler      *nav.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Lumina defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.AuthHandler.Authenticator)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Public discovery surface.
	r.Route("/venues", func(r chi.Router) {
		params.VenuesHandler.MountPublicRoutes(r)
		params.ReviewsHandler.MountPublicRoutes(r)
	})
	r.Route("/events", params.EventsHandler.MountPublicRoutes)

	// Guard decisions and navigation are evaluated for any caller; the
	// handlers fall back to the anonymous view without identity.
	r.Route("/access", func(r chi.Router) {
		params.GuardHandler.MountRoutes(r)
		if params.NavHandler != nil {
			params.NavHandler.MountRoutes(r)
		}
	})

	// Authenticated API surface; handlers reject anonymous callers.
	r.Route("/bookings", params.BookingsHandler.MountRoutes)
	r.Route("/reviews", params.ReviewsHandler.MountRoutes)

	// Role-gated trees matching the route access table.
	protect := guard.Protect(params.Table, params.Logger, params.Metrics)
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(protect)
		r.Route("/profile", params.UsersHandler.MountProfileRoutes)
	})
	r.Route("/owner", func(r chi.Router) {
		r.Use(protect)
		params.VenuesHandler.MountOwnerRoutes(r)
	})
	r.Route("/organizer", func(r chi.Router) {
		r.Use(protect)
		params.EventsHandler.MountOrganizerRoutes(r)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(protect)
		r.Route("/users", params.UsersHandler.MountAdminRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
