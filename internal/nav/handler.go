package nav

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/platform/httpx"
)

// sessionTTL bounds how long an idle user's toggle state is kept.
const sessionTTL = 30 * time.Minute

// Handler serves the derived navigation tree to the frontend shell. Toggle
// state is scoped per identity; anonymous callers get a plain derivation
// with no persisted expansion.
type Handler struct {
	logger   *slog.Logger
	tree     []Node
	table    *access.Table
	sessions *gocache.Cache
}

// NewHandler constructs the navigation handler over a static menu tree.
func NewHandler(logger *slog.Logger, tree []Node, table *access.Table) *Handler {
	return &Handler{
		logger:   logger,
		tree:     tree,
		table:    table,
		sessions: gocache.New(sessionTTL, 10*time.Minute),
	}
}

// MountRoutes registers navigation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.Show)
	r.Post("/navigation/toggle", h.Toggle)
}

// cacheFor returns the caller's session cache, creating one on first use.
// Each hit slides the idle TTL.
func (h *Handler) cacheFor(userID int64) *Cache {
	key := strconv.FormatInt(userID, 10)
	if v, ok := h.sessions.Get(key); ok {
		c := v.(*Cache)
		h.sessions.SetDefault(key, c)
		return c
	}
	c := NewCache(h.tree, h.table)
	h.sessions.SetDefault(key, c)
	return c
}

// Show answers GET /access/navigation?path= with the role-filtered tree.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path query parameter is required")
		return
	}
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, NewCache(h.tree, h.table).Derive(access.Anonymous, path))
		return
	}
	httpx.JSON(w, http.StatusOK, h.cacheFor(ident.ID).Derive(ident.Role, path))
}

type toggleRequest struct {
	Path string `json:"path"`
}

// Toggle flips a sidebar section open or closed for the calling identity.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "toggle state requires a session")
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path is required")
		return
	}
	h.cacheFor(ident.ID).Toggle(req.Path)
	w.WriteHeader(http.StatusNoContent)
}
