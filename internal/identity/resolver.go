package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lumina-africa/lumina/internal/shared"
)

// HTTPResolver talks to the auth collaborator over REST:
//
//	POST {base}/auth/login  {email, password} -> {identity, token}
//	GET  {base}/auth/me     (bearer token)    -> identity
//
// Successful resolutions are cached in process for a short TTL so repeated
// guard evaluations do not hammer the collaborator.
type HTTPResolver struct {
	base   string
	client *http.Client
	cache  *gocache.Cache
}

// NewHTTPResolver constructs a resolver for the given base URL.
func NewHTTPResolver(base string, timeout, cacheTTL time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &HTTPResolver{
		base:   base,
		client: &http.Client{Timeout: timeout},
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
}

// Resolve implements Resolver.
func (r *HTTPResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if cached, ok := r.cache.Get(token); ok {
		ident := cached.(Identity)
		return &ident, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, ErrTokenRejected
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrResolution, res.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(res.Body).Decode(&ident); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrResolution, err)
	}
	if err := ident.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	r.cache.SetDefault(token, ident)
	return &ident, nil
}

// Login implements Resolver.
func (r *HTTPResolver) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrResolution, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrResolution, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusBadRequest:
		return nil, "", shared.ErrInvalidCredentials
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, "", fmt.Errorf("%w: unexpected status %d", ErrResolution, res.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("%w: decode: %v", ErrResolution, err)
	}
	r.cache.SetDefault(out.Token, out.Identity)
	return &out.Identity, out.Token, nil
}

var _ Resolver = (*HTTPResolver)(nil)
