package identity

import "context"

type contextKey struct{}

// ContextWithIdentity stores the resolved identity in the request context.
func ContextWithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// FromContext extracts the identity from context. The second return is false
// for anonymous requests.
func FromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(contextKey{}).(*Identity)
	return ident, ok && ident != nil
}
