package auth

import "context"

// Identity is the caller derived from a verified token. It is trusted as
// asserted by the token for the lifetime of one request.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type identityContextKey struct{}

// ContextWithIdentity attaches the caller identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity attached by the verifier.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}
