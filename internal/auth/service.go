package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/shared"
	"github.com/lumina-africa/lumina/jobs"
)

// Mailer queues the welcome email off the registration path. *jobs.Client
// satisfies it; nil disables the mail.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenService
	mail   Mailer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenService, mail Mailer) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail}
}

// Authenticate validates email/password credentials and issues a token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*identity.Identity, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user.Identity(), token, nil
}

// Register creates an account and issues its first token. Admin accounts
// cannot self-register.
func (s *Service) Register(ctx context.Context, email, password, rawRole string) (*identity.Identity, string, error) {
	role := access.RoleUser
	if rawRole != "" {
		parsed, err := access.ParseRole(rawRole)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		if parsed == access.RoleAdmin {
			return nil, "", fmt.Errorf("%w: admin accounts are provisioned, not registered", shared.ErrForbidden)
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, "", err
	}
	if s.mail != nil {
		// Best effort; the account already exists either way.
		_, _ = s.mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
			To:      user.Email,
			Subject: "Welcome to Lumina",
			Body:    "Your Lumina account is ready. Browse venues and events across African cities and book your first stay.",
		})
	}
	return user.Identity(), token, nil
}

// ResolveToken verifies a bearer token and loads its identity. Any failure,
// including a deactivated account, maps to shared.ErrUnauthorized so the
// caller forces a logout.
func (s *Service) ResolveToken(ctx context.Context, raw string) (*identity.Identity, error) {
	claims, err := s.tokens.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: account gone", shared.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", shared.ErrUnauthorized)
	}
	ident := user.Identity()
	if err := ident.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}
	return ident, nil
}

// RevokeToken invalidates a bearer token ahead of its expiry.
func (s *Service) RevokeToken(ctx context.Context, raw string) error {
	claims, err := s.tokens.Verify(ctx, raw)
	if err != nil {
		// Already unusable; revoking it again changes nothing.
		return nil
	}
	return s.tokens.Revoke(ctx, claims)
}
