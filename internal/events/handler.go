package events

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

// Handler exposes event endpoints.
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

// MountPublicRoutes registers browse endpoints.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.ListUpcoming)
	r.Get("/{id}", h.Get)
}

// MountOrganizerRoutes registers management endpoints.
func (h *Handler) MountOrganizerRoutes(r chi.Router) {
	r.Get("/events", h.ListOwned)
	r.Post("/events", h.Create)
	r.Put("/events/{id}", h.Update)
	r.Delete("/events/{id}", h.Delete)
}

func (h *Handler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListRequest{
		City:     q.Get("city"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     atoiDefault(q.Get("page"), 1),
		PerPage:  atoiDefault(q.Get("per_page"), 20),
	}
	list, pg, err := h.svc.ListUpcoming(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, list, pg.Page, pg.PerPage, pg.Total, pg.TotalPages)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id")
		return
	}
	ident, _ := identity.FromContext(r.Context())
	e, err := h.svc.Get(r.Context(), ident, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	req := ListRequest{
		Search:  q.Get("search"),
		Page:    atoiDefault(q.Get("page"), 1),
		PerPage: atoiDefault(q.Get("per_page"), 20),
	}
	list, pg, err := h.svc.ListOwned(r.Context(), ident, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, list, pg.Page, pg.PerPage, pg.Total, pg.TotalPages)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req CreateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	e, err := h.svc.Create(r.Context(), ident, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("event created", "event_id", e.ID, "organizer_id", ident.ID)
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id")
		return
	}
	var req UpdateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	e, err := h.svc.Update(r.Context(), ident, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id")
		return
	}
	if err := h.svc.Delete(r.Context(), ident, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
