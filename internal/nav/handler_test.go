package nav

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
)

func newHandlerRouter(t *testing.T) chi.Router {
	t.Helper()
	table, err := access.LoadTable()
	require.NoError(t, err)
	h := NewHandler(slog.New(slog.DiscardHandler), Menu(), table)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func adminIdentity(id int64) *identity.Identity {
	return &identity.Identity{ID: id, Email: "admin@lumina.africa", Role: access.RoleAdmin, IsActive: true}
}

func showViews(t *testing.T, r chi.Router, ident *identity.Identity, path string) []View {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/navigation?path="+path, nil)
	if ident != nil {
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), ident))
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var views []View
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &views))
	return views
}

func toggle(t *testing.T, r chi.Router, ident *identity.Identity, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/navigation/toggle", strings.NewReader(`{"path":"`+path+`"}`))
	if ident != nil {
		req = req.WithContext(identity.ContextWithIdentity(req.Context(), ident))
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func TestToggleStateIsScopedPerIdentity(t *testing.T) {
	r := newHandlerRouter(t)
	alice := adminIdentity(1)
	bello := adminIdentity(2)

	// Both park on the same path so the admin section auto-expands, then
	// only the first user collapses it.
	showViews(t, r, alice, "/admin/users")
	showViews(t, r, bello, "/admin/users")
	require.Equal(t, http.StatusNoContent, toggle(t, r, alice, "/admin").Code)

	aliceAdmin := find(showViews(t, r, alice, "/admin/users"), "/admin")
	require.NotNil(t, aliceAdmin)
	assert.False(t, aliceAdmin.Expanded)

	belloAdmin := find(showViews(t, r, bello, "/admin/users"), "/admin")
	require.NotNil(t, belloAdmin)
	assert.True(t, belloAdmin.Expanded)
}

func TestDerivationDoesNotBleedAcrossUsers(t *testing.T) {
	r := newHandlerRouter(t)
	alice := adminIdentity(3)
	bello := adminIdentity(4)

	require.Equal(t, http.StatusNoContent, toggle(t, r, alice, "/admin/settings").Code)
	showViews(t, r, alice, "/admin/settings/general")

	// A second user navigating elsewhere must not reset the first user's
	// explicit toggles.
	showViews(t, r, bello, "/venues")

	settings := find(showViews(t, r, alice, "/admin/settings/general"), "/admin/settings")
	require.NotNil(t, settings)
	assert.True(t, settings.Expanded)
}

func TestAnonymousShowDerivesWithoutSession(t *testing.T) {
	r := newHandlerRouter(t)

	views := showViews(t, r, nil, "/venues")
	assert.Nil(t, find(views, "/admin"))
	discover := find(views, "/venues")
	require.NotNil(t, discover)
	assert.True(t, discover.Active)
}

func TestAnonymousToggleRejected(t *testing.T) {
	r := newHandlerRouter(t)
	assert.Equal(t, http.StatusUnauthorized, toggle(t, r, nil, "/admin").Code)
}
