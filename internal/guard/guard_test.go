package guard_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/guard"
	"github.com/lumina-africa/lumina/internal/identity"
)

type memorySlot struct {
	mu    sync.Mutex
	token string
}

func (m *memorySlot) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memorySlot) Put(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memorySlot) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type stubResolver struct {
	ident *identity.Identity
	token string
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (*identity.Identity, error) {
	if s.ident == nil {
		return nil, identity.ErrTokenRejected
	}
	return s.ident, nil
}

func (s *stubResolver) Login(ctx context.Context, email, password string) (*identity.Identity, string, error) {
	return s.ident, s.token, nil
}

type redirectSink struct {
	mu      sync.Mutex
	targets []string
}

func (r *redirectSink) navigate(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
}

func (r *redirectSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.targets))
	copy(out, r.targets)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTable(t *testing.T) *access.Table {
	t.Helper()
	table, err := access.LoadTable()
	require.NoError(t, err)
	return table
}

func authenticatedStore(t *testing.T, role access.Role) *identity.Store {
	t.Helper()
	ident := &identity.Identity{ID: 9, Email: "kofi@lumina.africa", Role: role, IsActive: true}
	store := identity.NewStore(&memorySlot{token: "tok"}, &stubResolver{ident: ident, token: "tok"}, loadTable(t), testLogger())
	snap := store.Initialize(context.Background())
	require.Equal(t, identity.StateAuthenticated, snap.State)
	return store
}

func anonymousStore(t *testing.T) *identity.Store {
	t.Helper()
	store := identity.NewStore(&memorySlot{}, &stubResolver{}, loadTable(t), testLogger())
	store.Initialize(context.Background())
	return store
}

func TestEvaluateScenarios(t *testing.T) {
	table := loadTable(t)
	user := &identity.Identity{ID: 1, Role: access.RoleUser, IsActive: true}
	admin := &identity.Identity{ID: 2, Role: access.RoleAdmin, IsActive: true}

	auth := func(id *identity.Identity) identity.Snapshot {
		return identity.Snapshot{State: identity.StateAuthenticated, Identity: id}
	}
	anon := identity.Snapshot{State: identity.StateAnonymous}

	cases := []struct {
		name       string
		snap       identity.Snapshot
		path       string
		wantKind   guard.Kind
		wantTarget string
	}{
		{"user on admin area", auth(user), "/admin", guard.KindRedirect, "/dashboard"},
		{"admin deep settings", auth(admin), "/admin/settings/security", guard.KindRender, ""},
		{"anonymous public venues", anon, "/venues", guard.KindRender, ""},
		{"anonymous owner area", anon, "/owner", guard.KindRedirect, "/auth/login"},
		{"loading blocks", identity.Snapshot{State: identity.StateLoading}, "/admin", guard.KindLoading, ""},
		{"uninitialized blocks", identity.Snapshot{State: identity.StateUninitialized}, "/", guard.KindLoading, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := guard.Evaluate(table, tc.snap, tc.path)
			assert.Equal(t, tc.wantKind, dec.Kind)
			assert.Equal(t, tc.wantTarget, dec.Target)
		})
	}
}

func TestWrongRoleRedirectsToOwnLanding(t *testing.T) {
	table := loadTable(t)
	owner := identity.Snapshot{State: identity.StateAuthenticated,
		Identity: &identity.Identity{ID: 3, Role: access.RoleVenueOwner, IsActive: true}}

	dec := guard.Evaluate(table, owner, "/admin")
	require.Equal(t, guard.KindRedirect, dec.Kind)
	// Valid identity, wrong destination: back to the role's landing route,
	// never to login.
	assert.Equal(t, "/owner", dec.Target)
	assert.False(t, dec.SessionExpired)
}

func TestRedirectTargetAlwaysPermitted(t *testing.T) {
	table := loadTable(t)
	for _, role := range access.Roles() {
		snap := identity.Snapshot{State: identity.StateAuthenticated,
			Identity: &identity.Identity{ID: 4, Role: role, IsActive: true}}
		dec := guard.Evaluate(table, snap, "/admin/settings")
		if dec.Kind == guard.KindRedirect {
			follow := guard.Evaluate(table, snap, dec.Target)
			assert.Equal(t, guard.KindRender, follow.Kind,
				"redirect target %s must render for %s or the guard loops", dec.Target, role)
		}
	}
}

func TestGuardIdempotentRedirect(t *testing.T) {
	store := authenticatedStore(t, access.RoleUser)
	sink := &redirectSink{}
	g := guard.New(loadTable(t), store, "/admin", sink.navigate, testLogger())

	first := g.Reevaluate()
	second := g.Reevaluate()

	require.Equal(t, guard.KindRedirect, first.Kind)
	assert.Equal(t, first.Target, second.Target)
	assert.Equal(t, []string{"/dashboard"}, sink.all(), "unchanged pair must signal exactly one redirect")
}

func TestGuardResignalsAfterPairChange(t *testing.T) {
	store := authenticatedStore(t, access.RoleUser)
	sink := &redirectSink{}
	g := guard.New(loadTable(t), store, "/admin", sink.navigate, testLogger())

	g.Reevaluate()
	g.SetPath("/dashboard") // allowed, resets the signal
	g.SetPath("/owner")     // denied again on a new pair

	assert.Equal(t, []string{"/dashboard", "/dashboard"}, sink.all())
}

func TestLogoutWhileOnProtectedRoute(t *testing.T) {
	store := authenticatedStore(t, access.RoleVenueOwner)
	sink := &redirectSink{}
	g := guard.New(loadTable(t), store, "/owner/venue", sink.navigate, testLogger())

	dec := g.Reevaluate()
	require.Equal(t, guard.KindRender, dec.Kind)

	store.Logout(context.Background())
	dec = g.Reevaluate()

	require.Equal(t, guard.KindRedirect, dec.Kind)
	assert.Equal(t, "/", dec.Target, "logout navigates to the public landing, not login")
	assert.Equal(t, []string{"/"}, sink.all())

	// Re-running with the settled anonymous pair does not signal again.
	dec = g.Reevaluate()
	assert.Equal(t, "/", dec.Target)
	assert.Equal(t, []string{"/"}, sink.all())
}

func TestForcedExpiryRedirectsToLogin(t *testing.T) {
	store := authenticatedStore(t, access.RoleOrganizer)
	sink := &redirectSink{}
	g := guard.New(loadTable(t), store, "/organizer/events", sink.navigate, testLogger())
	require.Equal(t, guard.KindRender, g.Reevaluate().Kind)

	store.ForceExpire(context.Background())
	dec := g.Reevaluate()

	require.Equal(t, guard.KindRedirect, dec.Kind)
	assert.Equal(t, "/auth/login", dec.Target)
	assert.True(t, dec.SessionExpired)
}

func TestWatchReactsToIdentityChanges(t *testing.T) {
	store := authenticatedStore(t, access.RoleUser)
	sink := &redirectSink{}
	g := guard.New(loadTable(t), store, "/dashboard", sink.navigate, testLogger())
	require.Equal(t, guard.KindRender, g.Reevaluate().Kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Watch(ctx)

	// Give the watcher time to subscribe before triggering the transition.
	time.Sleep(10 * time.Millisecond)
	store.Logout(context.Background())

	require.Eventually(t, func() bool {
		targets := sink.all()
		return len(targets) == 1 && targets[0] == "/"
	}, time.Second, 5*time.Millisecond)
}

func TestNavigatorMayReenterGuard(t *testing.T) {
	table := loadTable(t)
	store := authenticatedStore(t, access.RoleUser)

	// A host router typically reacts to the navigation signal by updating
	// the path, which calls straight back into the guard.
	var g *guard.Guard
	var followed []string
	g = guard.New(table, store, "/admin", func(target string) {
		followed = append(followed, target)
		g.SetPath(target)
	}, testLogger())

	done := make(chan guard.Decision, 1)
	go func() { done <- g.Reevaluate() }()
	select {
	case dec := <-done:
		assert.Equal(t, guard.KindRedirect, dec.Kind)
		assert.Equal(t, "/dashboard", dec.Target)
	case <-time.After(2 * time.Second):
		t.Fatal("reevaluate blocked; navigation signal issued while the guard lock was held")
	}
	assert.Equal(t, []string{"/dashboard"}, followed)

	// The redirect target itself renders for the role, closing the loop.
	assert.Equal(t, guard.KindRender, g.SetPath("/dashboard").Kind)
}
