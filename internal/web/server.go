// Package web serves the browser front end: a login page, the paginated
// "All Tasks" table, the "Active Tasks" list and the add form.
package web

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"taskapp/internal/config"
	"taskapp/internal/logging"
	"taskapp/internal/service"
	"taskapp/internal/session"
)

const (
	sessionName = "taskapp"

	keyWorkspace = "workspace"
	keyRole      = "role"
	keyUserID    = "user_id"
	keyEmail     = "email"

	flashSuccess = "success"
	flashError   = "error"

	shutdownTimeout = 5 * time.Second
)

func init() {
	// flash lists are stored as []interface{} session values
	gob.Register([]interface{}{})
}

// Server is the web front end. Each browser session owns a workspace holding
// its task collection and table state.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	auth    *session.Authenticator
	cookies *sessions.CookieStore
	spaces  *workspaces
	pages   map[string]*template.Template
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithAuthenticator replaces the authenticator built from config.
func WithAuthenticator(a *session.Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// New creates a server that reads and writes tasks through svc.
func New(cfg *config.Config, svc service.Service, logger *slog.Logger, opts ...Option) (*Server, error) {
	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("failed to generate session key")
		}
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	cookies := sessions.NewCookieStore(key)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger = logging.OrDiscard(logger)
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		auth:    session.NewAuthenticator(cfg.AdminEmail),
		cookies: cookies,
		spaces:  newWorkspaces(svc, logger, cfg.PageSize),
		pages:   pages,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	app := r.NewRoute().Subrouter()
	app.Use(s.requireLogin)
	app.HandleFunc("/", s.handleTasks).Methods(http.MethodGet)
	app.HandleFunc("/active", s.handleActive).Methods(http.MethodGet)
	app.HandleFunc("/add", s.handleAddPage).Methods(http.MethodGet)
	app.HandleFunc("/add", s.handleAdd).Methods(http.MethodPost)
	app.HandleFunc("/tasks/{id}/toggle", s.handleToggle).Methods(http.MethodPost)
	app.HandleFunc("/tasks/{id}/complete", s.handleComplete).Methods(http.MethodPost)
	app.HandleFunc("/tasks/{id}/delete", s.handleDelete).Methods(http.MethodPost)
	app.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	app.HandleFunc("/api/tasks", s.handleAPITasks).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and waits for background loads.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.spaces.wait()
	return err
}

// Wait blocks until background loads have finished.
func (s *Server) Wait() {
	s.spaces.wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
