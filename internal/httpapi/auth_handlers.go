package httpapi

import (
	"errors"
	"net/http"
	"time"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/obs"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

func viewOf(u hr.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (a *API) authRoutes() {
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(h, a.opts.RateBurst, a.opts.RatePerSec)
	}
	a.mux.Handle("POST /api/auth/register", limited(a.register))
	a.mux.Handle("POST /api/auth/login", limited(a.login))
	a.mux.HandleFunc("POST /api/auth/logout", a.logout)
	a.mux.Handle("GET /api/auth/me", a.authed(a.me))
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in hr.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := a.issue(w, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.register", map[string]any{"user_id": u.ID, "role": u.Role})
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.AuthFailure("invalid")
		}
		writeError(w, r, err)
		return
	}
	resp, err := a.issue(w, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.login", map[string]any{"user_id": u.ID, "role": u.Role})
	writeJSON(w, http.StatusOK, resp)
}

// issue mints a token for u and sets it as the session cookie.
func (a *API) issue(w http.ResponseWriter, u hr.User) (tokenResponse, error) {
	tok, exp, err := a.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return tokenResponse{}, errs.Wrap(err, errs.KindUnexpected, "issue token")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(a.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return tokenResponse{Token: tok, ExpiresAt: exp, User: viewOf(u)}, nil
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

// me returns the token identity and, when the account still exists, its
// profile. The identity is never re-validated against the store.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	resp := map[string]any{"id": id.ID, "role": id.Role}
	u, err := a.svc.GetUser(r.Context(), id.ID)
	switch {
	case err == nil:
		resp["user"] = u
	case !errs.Is(err, errs.KindNotFound):
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
