package httpapi

import (
	"errors"
	"net/http"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/obs"
)

const notAuthorized = "Not authorized"

// withAuth verifies the request credential and attaches the identity to the
// context. Missing and invalid tokens get the same 401 body; the reason is
// only logged and counted.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.tokens.Authenticate(r)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrUnauthenticated) {
				reason = "missing"
			}
			obs.AuthFailure(reason)
			obs.Warn("auth_failed", map[string]any{
				"request_id": RequestIDFromContext(r.Context()),
				"path":       r.URL.Path,
				"reason":     reason,
			})
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
	})
}

// RequireRole admits only callers whose role equals role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.RequireRole(r.Context(), role)
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				obs.AuthFailure("missing")
				unauthorized(w, r)
				return
			case err != nil:
				obs.AuthFailure("forbidden")
				obs.Warn("access_denied", map[string]any{
					"request_id": RequestIDFromContext(r.Context()),
					"path":       r.URL.Path,
					"user_id":    id.ID,
					"role":       id.Role,
					"required":   role,
				})
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="staffdesk"`)
	writeMessage(w, r, http.StatusUnauthorized, notAuthorized)
}
