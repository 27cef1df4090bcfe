package bookings

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

// Handler exposes booking endpoints. All of them require identity.
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

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{reference}", h.Get)
	r.Post("/{reference}/cancel", h.Cancel)
	r.Post("/{reference}/confirm", h.Confirm)
	r.Get("/venue/{venueID}", h.ListForVenue)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req CreateBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.svc.Create(r.Context(), ident, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	b, err := h.svc.Get(r.Context(), ident, chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	req := ListRequest{
		Status:  Status(q.Get("status")),
		Page:    atoiDefault(q.Get("page"), 1),
		PerPage: atoiDefault(q.Get("per_page"), 20),
	}
	list, pg, err := h.svc.ListMine(r.Context(), ident, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, list, pg.Page, pg.PerPage, pg.Total, pg.TotalPages)
}

func (h *Handler) ListForVenue(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid venue id")
		return
	}
	q := r.URL.Query()
	req := ListRequest{
		Status:  Status(q.Get("status")),
		Page:    atoiDefault(q.Get("page"), 1),
		PerPage: atoiDefault(q.Get("per_page"), 20),
	}
	list, pg, err := h.svc.ListForVenue(r.Context(), ident, venueID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, list, pg.Page, pg.PerPage, pg.Total, pg.TotalPages)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	b, err := h.svc.Cancel(r.Context(), ident, chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	b, err := h.svc.Confirm(r.Context(), ident, chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
