package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	table, err := access.LoadTable()
	require.NoError(t, err)
	return NewCache(Menu(), table)
}

func find(views []View, path string) *View {
	for i := range views {
		if views[i].Path == path {
			return &views[i]
		}
		if v := find(views[i].Children, path); v != nil {
			return v
		}
	}
	return nil
}

func TestDeriveActiveBranch(t *testing.T) {
	c := newCache(t)
	views := c.Derive(access.RoleAdmin, "/admin/settings/general")

	adminSection := find(views, "/admin")
	require.NotNil(t, adminSection)
	assert.True(t, adminSection.Active)
	assert.True(t, adminSection.Expanded)

	settings := find(views, "/admin/settings")
	require.NotNil(t, settings)
	assert.True(t, settings.Active)
	assert.True(t, settings.Expanded)

	general := find(views, "/admin/settings/general")
	require.NotNil(t, general)
	assert.True(t, general.Active)
	assert.False(t, general.Expanded, "leaves have no children to expand")

	users := find(views, "/admin/users")
	require.NotNil(t, users)
	assert.False(t, users.Active)
}

func TestDeriveFiltersByRole(t *testing.T) {
	c := newCache(t)

	views := c.Derive(access.RoleUser, "/dashboard")
	assert.Nil(t, find(views, "/admin"), "users must not see the admin section")
	assert.Nil(t, find(views, "/owner"))
	assert.NotNil(t, find(views, "/dashboard"))
	assert.NotNil(t, find(views, "/venues"))

	views = c.Derive(access.RoleVenueOwner, "/owner/venues")
	assert.NotNil(t, find(views, "/owner"))
	assert.Nil(t, find(views, "/organizer"), "venue owners must not see the organizer section")

	views = c.Derive(access.Anonymous, "/venues")
	assert.NotNil(t, find(views, "/venues"))
	assert.Nil(t, find(views, "/dashboard"))
	assert.Nil(t, find(views, "/admin"))
}

func TestToggleOverridesAutoExpansion(t *testing.T) {
	c := newCache(t)

	// Collapse the active admin section explicitly.
	c.Derive(access.RoleAdmin, "/admin/users")
	c.Toggle("/admin")
	views := c.Derive(access.RoleAdmin, "/admin/users")
	section := find(views, "/admin")
	require.NotNil(t, section)
	assert.True(t, section.Active)
	assert.False(t, section.Expanded, "explicit collapse wins over the active branch")

	// Open an inactive section; it persists across navigations within the
	// same branch.
	c.Toggle("/dashboard")
	views = c.Derive(access.RoleAdmin, "/admin/venues")
	dash := find(views, "/dashboard")
	require.NotNil(t, dash)
	assert.True(t, dash.Expanded)
	assert.False(t, dash.Active)
}

func TestToggleSetResetsOutsideExpandedBranches(t *testing.T) {
	c := newCache(t)

	c.Derive(access.RoleAdmin, "/admin/users")
	c.Toggle("/admin") // collapse the active branch
	c.Toggle("/dashboard")

	// Navigating inside an expanded branch keeps the toggles.
	c.Derive(access.RoleAdmin, "/dashboard/profile")
	views := c.Derive(access.RoleAdmin, "/dashboard/profile")
	section := find(views, "/admin")
	require.NotNil(t, section)
	assert.False(t, section.Expanded)

	// Jumping to a leaf outside every expanded branch resets to
	// auto-expansion of the new active branch.
	views = c.Derive(access.RoleAdmin, "/owner/bookings")
	owner := find(views, "/owner")
	require.NotNil(t, owner)
	assert.True(t, owner.Expanded)
	dash := find(views, "/dashboard")
	require.NotNil(t, dash)
	assert.False(t, dash.Expanded, "explicit open state was reset")
}

func TestWithinBoundaries(t *testing.T) {
	assert.True(t, within("/admin/settings", "/admin"))
	assert.True(t, within("/admin", "/admin"))
	assert.False(t, within("/administrivia", "/admin"))
	assert.False(t, within("/admin", "/admin/settings"))
	assert.False(t, within("/venues", "/"))
}
