package web

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"taskapp/internal/session"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	workspaceKey
)

func withRequestState(r *http.Request, id session.Identity, ws *workspace) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, id)
	ctx = context.WithValue(ctx, workspaceKey, ws)
	return r.WithContext(ctx)
}

// requestState returns the identity and workspace attached by requireLogin.
func requestState(r *http.Request) (session.Identity, *workspace) {
	id, _ := r.Context().Value(identityKey).(session.Identity)
	ws, _ := r.Context().Value(workspaceKey).(*workspace)
	return id, ws
}

// cookieSession returns the request's session. A cookie that fails to
// decode yields a fresh, empty session.
func (s *Server) cookieSession(r *http.Request) *sessions.Session {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session cookie", "err", err)
	}
	return sess
}

func identityFrom(sess *sessions.Session) session.Identity {
	role, _ := sess.Values[keyRole].(string)
	userID, _ := sess.Values[keyUserID].(int)
	email, _ := sess.Values[keyEmail].(string)
	return session.Identity{Role: session.Role(role), UserID: userID, Email: email}
}

func storeIdentity(sess *sessions.Session, id session.Identity) {
	sess.Values[keyRole] = string(id.Role)
	sess.Values[keyUserID] = id.UserID
	sess.Values[keyEmail] = id.Email
}

// requireLogin redirects anonymous requests to the login page and rejects
// unsafe requests without the session's CSRF token. For signed-in requests it
// attaches the identity and workspace, creating the workspace when the server
// does not know the session's one, and starts the initial load.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.cookieSession(r)
		id := identityFrom(sess)
		if !id.Resolved() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !validCSRF(r, sess) {
			s.logger.Warn("rejected request without csrf token", "method", r.Method, "path", r.URL.Path)
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		changed := false
		if csrfToken(sess) == "" {
			tok, err := newCSRFToken()
			if err != nil {
				s.logger.Error("failed to create csrf token", "err", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			sess.Values[keyCSRF] = tok
			changed = true
		}
		wsID, _ := sess.Values[keyWorkspace].(string)
		ws, ok := s.spaces.get(wsID)
		if !ok {
			ws = s.spaces.create()
			sess.Values[keyWorkspace] = ws.id
			changed = true
		}
		if changed {
			if err := sess.Save(r, w); err != nil {
				s.logger.Error("failed to save session", "err", err)
				http.Error(w, "failed to save session", http.StatusInternalServerError)
				return
			}
		}
		s.spaces.load(ws, id)

		next.ServeHTTP(w, withRequestState(r, id, ws))
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if identityFrom(s.cookieSession(r)).Resolved() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login", pageData{Title: "Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	id, err := s.auth.Login(email, r.FormValue("password"))
	if err != nil {
		s.render(w, r, http.StatusUnauthorized, "login", pageData{
			Title:     "Login",
			FormEmail: email,
			FormError: "Email and password are required.",
		})
		return
	}

	tok, err := newCSRFToken()
	if err != nil {
		s.logger.Error("failed to create csrf token", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// the workspace is created by the first signed-in request
	sess := s.cookieSession(r)
	if old, ok := sess.Values[keyWorkspace].(string); ok {
		s.spaces.drop(old)
		delete(sess.Values, keyWorkspace)
	}
	storeIdentity(sess, id)
	sess.Values[keyCSRF] = tok
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to save session", "err", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	s.logger.Info("login", "email", id.Email, "role", id.Role, "user_id", id.UserID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)
	s.spaces.drop(ws.id)

	sess := s.cookieSession(r)
	sess.Values = make(map[interface{}]interface{})
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1}
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to clear session", "err", err)
	}
	s.logger.Info("logout", "email", id.Email)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
