package guard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/platform/httpx"
)

// Handler answers guard decisions for the frontend router, which applies
// them verbatim instead of duplicating the route table client side.
type Handler struct {
	logger *slog.Logger
	table  *access.Table
}

// NewHandler constructs the decision API handler.
func NewHandler(logger *slog.Logger, table *access.Table) *Handler {
	return &Handler{logger: logger, table: table}
}

// MountRoutes registers the decision endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/decision", h.Decision)
}

// DecisionResponse is the wire form of a guard decision.
type DecisionResponse struct {
	Decision       string `json:"decision"`
	Target         string `json:"target,omitempty"`
	SessionExpired bool   `json:"session_expired,omitempty"`
}

// Decision evaluates the caller's identity against ?path=.
func (h *Handler) Decision(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path query parameter is required")
		return
	}

	snap := identity.Snapshot{State: identity.StateAnonymous}
	if ident, ok := identity.FromContext(r.Context()); ok {
		snap = identity.Snapshot{State: identity.StateAuthenticated, Identity: ident}
	}

	dec := Evaluate(h.table, snap, path)
	httpx.JSON(w, http.StatusOK, DecisionResponse{
		Decision:       dec.Kind.String(),
		Target:         dec.Target,
		SessionExpired: dec.SessionExpired,
	})
}
