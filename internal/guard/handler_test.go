package guard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/guard"
	"github.com/lumina-africa/lumina/internal/identity"
)

func decisionRequest(t *testing.T, h *guard.Handler, path string, ident *identity.Identity) guard.DecisionResponse {
	t.Helper()
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/decision?path="+path, nil)
	if ident != nil {
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), ident))
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var out guard.DecisionResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func TestDecisionEndpoint(t *testing.T) {
	h := guard.NewHandler(testLogger(), loadTable(t))
	user := &identity.Identity{ID: 5, Role: access.RoleUser, IsActive: true}

	out := decisionRequest(t, h, "/dashboard", user)
	assert.Equal(t, "render", out.Decision)
	assert.Empty(t, out.Target)

	out = decisionRequest(t, h, "/admin", user)
	assert.Equal(t, "redirect", out.Decision)
	assert.Equal(t, "/dashboard", out.Target)

	out = decisionRequest(t, h, "/owner", nil)
	assert.Equal(t, "redirect", out.Decision)
	assert.Equal(t, "/auth/login", out.Target)

	out = decisionRequest(t, h, "/venues", nil)
	assert.Equal(t, "render", out.Decision)
}

func TestDecisionEndpointRequiresPath(t *testing.T) {
	h := guard.NewHandler(testLogger(), loadTable(t))
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/decision", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProtectMiddleware(t *testing.T) {
	table := loadTable(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	counter := &redirectCounter{reasons: map[string]int{}}
	protected := guard.Protect(table, testLogger(), counter)(next)

	t.Run("anonymous redirected to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/owner/venues", nil)
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusSeeOther, res.Code)
		assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	})

	t.Run("wrong role redirected to landing", func(t *testing.T) {
		user := &identity.Identity{ID: 6, Role: access.RoleUser, IsActive: true}
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), user))
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusSeeOther, res.Code)
		assert.Equal(t, "/dashboard", res.Header().Get("Location"))
	})

	t.Run("allowed role passes through", func(t *testing.T) {
		admin := &identity.Identity{ID: 7, Role: access.RoleAdmin, IsActive: true}
		req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), admin))
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("api clients get problems not redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/owner", nil)
		req.Header.Set("Accept", "application/json")
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code)

		user := &identity.Identity{ID: 8, Role: access.RoleUser, IsActive: true}
		req = httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Accept", "application/json")
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), user))
		res = httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("denials are counted by reason", func(t *testing.T) {
		assert.Positive(t, counter.reasons["login"])
		assert.Positive(t, counter.reasons["landing"])
	})
}

type redirectCounter struct {
	reasons map[string]int
}

func (c *redirectCounter) AddGuardRedirect(reason string) {
	c.reasons[reason]++
}
