package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

const sessionCookie = "fintrack_session"

type userKey struct{}

// userFrom returns the authenticated user stored by authed.
func userFrom(ctx context.Context) core.User {
	u, _ := ctx.Value(userKey{}).(core.User)
	return u
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// authed rejects requests without a valid session with 401.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request, core.User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			UnauthorizedError("not authenticated").Write(w)
			return
		}
		u, err := s.svc.Users.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := applog.WithUser(context.WithValue(r.Context(), userKey{}, u), u.ID)
		next(w, r.WithContext(ctx), u)
	})
}

func (s *Server) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

type authView struct {
	Message string   `json:"message,omitempty"`
	User    userView `json:"user"`
}

// handleRegister creates the account and signs the new user in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.svc.Users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, token, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setSession(w, token)
	NewJSONResponse().Status(http.StatusCreated).Body(authView{Message: "user created", User: newUserView(u)}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	u, token, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).InfoContext(r.Context(), "User logged in",
		applog.FieldUserID, u.ID,
		applog.FieldClientIP, s.detector.ExtractClientIP(r))
	s.setSession(w, token)
	NewJSONResponse().Body(authView{Message: "logged in", User: newUserView(u)}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.svc.Users.Logout(token)
	}
	s.clearSession(w)
	NewJSONResponse().Body(messageView{Message: "logged out"}).Write(w)
}

// handleCurrentUser answers 200 either way so clients can probe the session.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		NewJSONResponse().Body(map[string]bool{"isAuthenticated": false}).Write(w)
		return
	}
	u, err := s.svc.Users.Authenticate(r.Context(), token)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			NewJSONResponse().Body(map[string]bool{"isAuthenticated": false}).Write(w)
			return
		}
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"isAuthenticated": true, "user": newUserView(u)}).Write(w)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, u core.User) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.svc.Users.UpdateSettings(r.Context(), u.ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(authView{Message: "settings updated", User: newUserView(updated)}).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, u core.User) {
	cats, err := s.svc.Categories.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newCategoryViews(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, u core.User) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), u.ID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(categoryView{ID: c.ID, Name: c.Name}).Write(w)
}
