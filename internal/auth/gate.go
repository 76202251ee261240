package auth

import "context"

// RequireRole admits the caller only when its role equals role exactly.
// A missing identity is Unauthenticated rather than Forbidden.
func RequireRole(ctx context.Context, role string) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	if id.Role != role {
		return id, ErrForbidden
	}
	return id, nil
}
