package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/auth"
	"github.com/lumina-africa/lumina/internal/shared"
	"github.com/lumina-africa/lumina/jobs"
)

type stubRepo struct {
	byEmail map[string]*auth.User
	byID    map[int64]*auth.User
	nextID  int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{byEmail: map[string]*auth.User{}, byID: map[int64]*auth.User{}, nextID: 1}
}

func (s *stubRepo) add(u *auth.User) *auth.User {
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
	return u
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, user auth.User) (int64, error) {
	if _, ok := s.byEmail[user.Email]; ok {
		return 0, shared.ErrAlreadyExists
	}
	created := s.add(&user)
	return created.ID, nil
}

type stubMailer struct {
	sent []jobs.SendEmailPayload
}

func (s *stubMailer) EnqueueSendEmail(ctx context.Context, p jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	s.sent = append(s.sent, p)
	return &asynq.TaskInfo{}, nil
}

func newService(t *testing.T, repo auth.Repository) *auth.Service {
	t.Helper()
	svc, _ := newServiceWithMail(t, repo)
	return svc
}

func newServiceWithMail(t *testing.T, repo auth.Repository) (*auth.Service, *stubMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenService("test-secret", "lumina-test", time.Hour, client)
	mail := &stubMailer{}
	return auth.NewService(repo, tokens, mail), mail
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func seedUser(t *testing.T, repo *stubRepo, role access.Role, active bool) *auth.User {
	t.Helper()
	return repo.add(&auth.User{
		Email:        "zuri@lumina.africa",
		PasswordHash: hash(t, "correct-horse"),
		Role:         role,
		IsActive:     active,
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, access.RoleVenueOwner, true)
	svc := newService(t, repo)

	ident, token, err := svc.Authenticate(context.Background(), "zuri@lumina.africa", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, access.RoleVenueOwner, ident.Role)

	resolved, err := svc.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, resolved.ID)
	assert.Equal(t, ident.Role, resolved.Role)
}

func TestAuthenticateFailures(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, access.RoleUser, true)
	repo.add(&auth.User{Email: "off@lumina.africa", PasswordHash: hash(t, "correct-horse"), Role: access.RoleUser, IsActive: false})
	svc := newService(t, repo)

	cases := []struct{ email, password string }{
		{"zuri@lumina.africa", "wrong-pass"},
		{"nobody@lumina.africa", "correct-horse"},
		{"off@lumina.africa", "correct-horse"}, // inactive account
	}
	for _, tc := range cases {
		_, _, err := svc.Authenticate(context.Background(), tc.email, tc.password)
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "email=%s", tc.email)
	}
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc := newService(t, newStubRepo())

	ident, token, err := svc.Register(context.Background(), "New@Lumina.Africa ", "longpassword", "")
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, ident.Role)
	assert.Equal(t, "new@lumina.africa", ident.Email)
	assert.NotEmpty(t, token)
}

func TestRegisterQueuesWelcomeEmail(t *testing.T) {
	svc, mail := newServiceWithMail(t, newStubRepo())

	ident, _, err := svc.Register(context.Background(), "amara@lumina.africa", "longpassword", "")
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, ident.Email, mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Subject, "Welcome")
}

func TestRegisterRoleRules(t *testing.T) {
	svc := newService(t, newStubRepo())

	ident, _, err := svc.Register(context.Background(), "owner@lumina.africa", "longpassword", "venue_owner")
	require.NoError(t, err)
	assert.Equal(t, access.RoleVenueOwner, ident.Role)

	_, _, err = svc.Register(context.Background(), "boss@lumina.africa", "longpassword", "admin")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, _, err = svc.Register(context.Background(), "odd@lumina.africa", "longpassword", "wizard")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	svc := newService(t, repo)

	_, _, err := svc.Register(context.Background(), "dup@lumina.africa", "longpassword", "")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "dup@lumina.africa", "longpassword", "")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestResolveTokenRejections(t *testing.T) {
	repo := newStubRepo()
	user := seedUser(t, repo, access.RoleUser, true)
	svc := newService(t, repo)

	_, token, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)

	// Garbage token.
	_, err = svc.ResolveToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// Deactivation after issuance invalidates the token.
	user.IsActive = false
	_, err = svc.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	repo := newStubRepo()
	user := seedUser(t, repo, access.RoleOrganizer, true)
	svc := newService(t, repo)

	_, token, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), token))
	_, err = svc.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// Revoking an already-dead token stays a no-op.
	assert.NoError(t, svc.RevokeToken(context.Background(), token))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	repo := newStubRepo()
	user := seedUser(t, repo, access.RoleUser, true)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenService("test-secret", "lumina-test", time.Millisecond, client)
	svc := auth.NewService(repo, tokens, nil)

	_, token, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
