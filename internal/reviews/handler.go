package reviews

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/platform/httpx"
	"github.com/lumina-africa/lumina/internal/shared"
)

// Handler exposes review endpoints. Reading is public; writing requires
// identity.
type Handler struct {
	logger   *slog.Logger
	svc      *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, svc *Service) *Handler {
	return &Handler{
		logger:   logger,
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountPublicRoutes registers read endpoints. Mounted under the public
// venues tree so anonymous visitors can browse ratings.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/{venueID}/reviews", h.ListForVenue)
	r.Get("/{venueID}/reviews/aggregate", h.VenueAggregate)
}

// MountRoutes registers write endpoints; these require identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) ListForVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid venue id")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	list, pg, err := h.svc.ListForVenue(r.Context(), venueID, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, list, pg.Page, pg.PerPage, pg.Total, pg.TotalPages)
}

func (h *Handler) VenueAggregate(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid venue id")
		return
	}
	agg, err := h.svc.VenueAggregate(r.Context(), venueID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agg)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req CreateReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rev, err := h.svc.Create(r.Context(), ident, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rev)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid review id")
		return
	}
	if err := h.svc.Delete(r.Context(), ident, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
