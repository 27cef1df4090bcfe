package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lumina-africa/lumina/internal/access"
)

// DefaultResolveTimeout bounds Initialize and Login round trips. Past it the
// operation fails closed instead of hanging.
const DefaultResolveTimeout = 10 * time.Second

// TokenSlot persists the opaque credential token across restarts.
type TokenSlot interface {
	Get(ctx context.Context) (string, error)
	Put(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Resolver is the external auth collaborator.
type Resolver interface {
	// Resolve exchanges a token for its identity. Returns ErrTokenRejected
	// on 401, ErrResolution on any other failure.
	Resolve(ctx context.Context, token string) (*Identity, error)
	// Login exchanges credentials for an identity and token.
	Login(ctx context.Context, email, password string) (*Identity, string, error)
}

// Store owns the current identity and its lifecycle. All mutation goes
// through Initialize, Login, Logout and ForceExpire; guards only read.
type Store struct {
	slot     TokenSlot
	resolver Resolver
	table    *access.Table
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	ident   *Identity
	expired bool
	// gen increments on every settled transition. An in-flight resolution
	// captures gen at launch and is discarded if it no longer matches when
	// it lands, so a slow Initialize cannot clobber a newer Logout.
	gen     uint64
	subs    map[uint64]chan Snapshot
	nextSub uint64
}

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithResolveTimeout overrides the resolution timeout.
func WithResolveTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewStore constructs a Store in the UNINITIALIZED state.
func NewStore(slot TokenSlot, resolver Resolver, table *access.Table, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		slot:     slot,
		resolver: resolver,
		table:    table,
		logger:   logger,
		timeout:  DefaultResolveTimeout,
		state:    StateUninitialized,
		subs:     make(map[uint64]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns an atomic view of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a change listener. Every settled transition publishes a
// Snapshot on the returned channel. The cancel function must be called to
// release the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Initialize resolves a persisted token, if any, to an identity. Any failure
// (missing token, network error, 401, inactive account, unknown role) settles
// the store ANONYMOUS and discards the token. Safe to call once at startup;
// repeat calls after the first settle are no-ops.
func (s *Store) Initialize(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.state != StateUninitialized {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.state = StateLoading
	gen := s.gen
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.slot.Get(ctx)
	if err != nil || token == "" {
		if err != nil {
			s.logger.Warn("identity: read token slot", slog.Any("error", err))
		}
		return s.settle(gen, StateAnonymous, nil, false)
	}

	ident, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		// Fail closed and silent; the login prompt is the recovery path.
		s.logger.Info("identity: token resolution failed", slog.Any("error", err))
		s.clearSlot()
		return s.settle(gen, StateAnonymous, nil, false)
	}
	if err := ident.Validate(); err != nil {
		s.logger.Error("identity: collaborator returned invalid identity", slog.Any("error", err))
		s.clearSlot()
		return s.settle(gen, StateAnonymous, nil, false)
	}
	if !ident.IsActive {
		s.clearSlot()
		return s.settle(gen, StateAnonymous, nil, false)
	}
	return s.settle(gen, StateAuthenticated, ident, false)
}

// Login authenticates credentials and, on success, stores the token and
// returns the role's landing route. On failure the state is untouched and the
// error surfaces to the caller.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ident, token, err := s.resolver.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := ident.Validate(); err != nil {
		return "", err
	}
	if err := s.slot.Put(ctx, token); err != nil {
		s.logger.Warn("identity: persist token", slog.Any("error", err))
	}

	s.mu.Lock()
	s.gen++
	s.state = StateAuthenticated
	s.ident = ident
	s.expired = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	return s.table.LandingRoute(ident.Role), nil
}

// Logout discards the credential and settles ANONYMOUS. Idempotent: logging
// out an anonymous store only re-signals the public landing route.
func (s *Store) Logout(ctx context.Context) string {
	s.clearSlotCtx(ctx)

	s.mu.Lock()
	changed := s.state != StateAnonymous
	s.gen++
	s.state = StateAnonymous
	s.ident = nil
	s.expired = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if changed {
		s.publish(snap)
	}
	return s.table.PublicLanding()
}

// ForceExpire reacts to externally detected credential loss (a collaborator
// 401, or the stored token vanishing). The published snapshot carries the
// Expired flag so the UI can prompt for re-authentication.
func (s *Store) ForceExpire(ctx context.Context) {
	s.clearSlotCtx(ctx)

	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.gen++
	s.state = StateAnonymous
	s.ident = nil
	s.expired = wasAuthenticated
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if wasAuthenticated {
		s.publish(snap)
	}
}

// settle applies a resolution outcome unless a newer transition already won.
func (s *Store) settle(gen uint64, state State, ident *Identity, expired bool) Snapshot {
	s.mu.Lock()
	if s.gen != gen {
		// Superseded by Login/Logout/ForceExpire; drop the stale result.
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.gen++
	s.state = state
	s.ident = ident
	s.expired = expired
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Identity: s.ident, Expired: s.expired}
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Slow subscribers drop intermediate snapshots; they will see the
			// latest state on the next notification.
		}
	}
}

func (s *Store) clearSlot() {
	s.clearSlotCtx(context.Background())
}

func (s *Store) clearSlotCtx(ctx context.Context) {
	if err := s.slot.Clear(ctx); err != nil {
		s.logger.Warn("identity: clear token slot", slog.Any("error", err))
	}
}
