// Package identity holds the session/identity store: the single source of
// truth for who is logged in, with an explicit lifecycle and a
// change-notification stream route guards subscribe to.
package identity

import (
	"errors"
	"fmt"

	"github.com/lumina-africa/lumina/internal/access"
)

// Identity describes the authenticated actor.
type Identity struct {
	ID              int64       `json:"id"`
	Email           string      `json:"email"`
	Role            access.Role `json:"role"`
	IsActive        bool        `json:"is_active"`
	IsEmailVerified bool        `json:"is_email_verified"`
}

// Validate enforces the closed role set at the identity boundary.
func (id *Identity) Validate() error {
	if id == nil {
		return errors.New("identity: nil identity")
	}
	if _, err := access.ParseRole(string(id.Role)); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// State is the lifecycle phase of the store.
type State int

const (
	// StateUninitialized is the state before Initialize has been called.
	StateUninitialized State = iota
	// StateLoading covers an in-flight token resolution. Guards must block
	// rendering, not default-allow or default-deny.
	StateLoading
	// StateAuthenticated means a valid identity is held.
	StateAuthenticated
	// StateAnonymous means no valid credential is present.
	StateAnonymous
)

// String implements fmt.Stringer for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Snapshot is an atomic view of the store published to subscribers.
type Snapshot struct {
	State    State
	Identity *Identity
	// Expired is set when a previously authenticated session was forcibly
	// invalidated (collaborator returned 401 or the token vanished), so the
	// UI can show a "session expired" prompt instead of a silent logout.
	Expired bool
}

// Role returns the snapshot's role, or access.Anonymous when not
// authenticated.
func (s Snapshot) Role() access.Role {
	if s.State == StateAuthenticated && s.Identity != nil {
		return s.Identity.Role
	}
	return access.Anonymous
}

var (
	// ErrResolution wraps network, timeout and malformed-response failures
	// while resolving a token. Recovered locally by failing closed.
	ErrResolution = errors.New("identity: resolution failed")
	// ErrTokenRejected indicates the collaborator answered 401 for the
	// stored token.
	ErrTokenRejected = errors.New("identity: token rejected")
)
