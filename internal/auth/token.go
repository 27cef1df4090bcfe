package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-africa/lumina/internal/shared"
)

// DefaultTokenTTL is the bearer token lifetime.
const DefaultTokenTTL = 24 * time.Hour

const revokePrefix = "auth:revoked:"

// TokenService issues and verifies HS256 bearer tokens. Revocations live in
// Redis keyed by token ID, expiring together with the token itself.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	redis  *redis.Client
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret, issuer string, ttl time.Duration, client *redis.Client) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, redis: client}
}

// Claims carry the role alongside the registered set.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issue creates a signed token for the user.
func (s *TokenService) Issue(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: user.Role.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token, including the revocation check.
// Every failure maps to shared.ErrUnauthorized; callers need no finer grain.
func (s *TokenService) Verify(ctx context.Context, raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}
	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", shared.ErrUnauthorized)
	}
	return &claims, nil
}

// Revoke blacklists the token until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.redis == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.ttl
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.redis.Set(ctx, revokePrefix+claims.ID, "1", ttl).Err()
}

// UserID extracts the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", shared.ErrUnauthorized)
	}
	return id, nil
}

func (s *TokenService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	_, err := s.redis.Get(ctx, revokePrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		// Fail closed: an unreachable revocation list denies the token.
		return true, fmt.Errorf("%w: revocation check failed", shared.ErrUnauthorized)
	}
	return true, nil
}
