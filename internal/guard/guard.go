// Package guard enforces route access: rendering proceeds only when the
// current identity may enter the current path, anything else becomes a
// neutral loading state or a redirect signal.
package guard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
)

// Kind classifies a guard decision.
type Kind int

const (
	// KindLoading means identity resolution is pending; render a neutral
	// loading state, take no redirect action.
	KindLoading Kind = iota
	// KindRender means the protected subtree may render.
	KindRender
	// KindRedirect means navigation must move to Decision.Target first.
	KindRedirect
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRender:
		return "render"
	case KindRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of one guard evaluation.
type Decision struct {
	Kind   Kind
	Target string
	// SessionExpired accompanies a login redirect caused by forced
	// invalidation, so the UI can show the re-authentication prompt.
	SessionExpired bool
}

// Evaluate runs the guard state machine for one (snapshot, path) pair.
// Authenticated identities denied by the route table are redirected to their
// own landing route, never to login: the identity is valid, only the
// destination is wrong.
func Evaluate(table *access.Table, snap identity.Snapshot, path string) Decision {
	switch snap.State {
	case identity.StateUninitialized, identity.StateLoading:
		return Decision{Kind: KindLoading}
	case identity.StateAnonymous:
		if table.CanAccessPath(access.Anonymous, path) {
			return Decision{Kind: KindRender}
		}
		return Decision{Kind: KindRedirect, Target: table.LoginRoute(), SessionExpired: snap.Expired}
	}
	role := snap.Role()
	if table.CanAccessPath(role, path) {
		return Decision{Kind: KindRender}
	}
	return Decision{Kind: KindRedirect, Target: table.LandingRoute(role)}
}

// Navigator receives redirect signals. The host router owns the actual
// view/URL change.
type Navigator func(target string)

// Guard binds the identity store to a navigable path and re-evaluates on
// every identity or path change, always against the latest pair. Repeated
// evaluation of an unchanged (identity, path) pair signals at most one
// redirect.
type Guard struct {
	table    *access.Table
	store    *identity.Store
	navigate Navigator
	logger   *slog.Logger

	mu       sync.Mutex
	path     string
	prevSnap identity.Snapshot

	signaled   bool
	lastKey    pairKey
	lastTarget string
}

// pairKey identifies one (identity, path) pair for redirect dedupe.
type pairKey struct {
	state   identity.State
	ident   int64
	expired bool
	path    string
}

// New constructs a Guard starting at path.
func New(table *access.Table, store *identity.Store, path string, navigate Navigator, logger *slog.Logger) *Guard {
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Guard{
		table:    table,
		store:    store,
		navigate: navigate,
		logger:   logger,
		path:     path,
		prevSnap: store.Snapshot(),
	}
}

// SetPath records a navigation event (including browser back/forward, which
// the host observes independently) and re-evaluates.
func (g *Guard) SetPath(path string) Decision {
	g.mu.Lock()
	g.path = path
	g.mu.Unlock()
	return g.Reevaluate()
}

// Reevaluate runs the state machine against the latest (identity, path) pair.
// The navigation signal fires after the lock is released, so a Navigator may
// call back into SetPath for the redirect target without deadlocking.
func (g *Guard) Reevaluate() Decision {
	snap := g.store.Snapshot()

	g.mu.Lock()
	prev := g.prevSnap
	g.prevSnap = snap
	path := g.path

	dec := Evaluate(g.table, snap, path)

	// A logout observed while parked on a protected route navigates to the
	// public landing page; a forced expiry or a cold unauthenticated visit
	// goes to login instead.
	if dec.Kind == KindRedirect && snap.State == identity.StateAnonymous && !snap.Expired &&
		prev.State == identity.StateAuthenticated {
		dec.Target = g.table.PublicLanding()
	}

	if dec.Kind != KindRedirect {
		if dec.Kind == KindRender {
			g.signaled = false
		}
		g.mu.Unlock()
		return dec
	}

	key := pairKeyFor(snap, path)
	if g.signaled && key == g.lastKey {
		// Same pair already signaled; repeat the decision without a second
		// navigation signal.
		dec.Target = g.lastTarget
		g.mu.Unlock()
		return dec
	}
	g.signaled = true
	g.lastKey = key
	g.lastTarget = dec.Target
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Debug("guard redirect",
			slog.String("path", path),
			slog.String("target", dec.Target),
			slog.String("state", snap.State.String()))
	}
	g.navigate(dec.Target)
	return dec
}

// Watch re-evaluates on every identity store notification until ctx is done.
func (g *Guard) Watch(ctx context.Context) {
	ch, cancel := g.store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			g.Reevaluate()
		}
	}
}

func pairKeyFor(snap identity.Snapshot, path string) pairKey {
	var id int64
	if snap.Identity != nil {
		id = snap.Identity.ID
	}
	return pairKey{state: snap.State, ident: id, expired: snap.Expired, path: path}
}
