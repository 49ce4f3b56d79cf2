package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/state"
	"taskapp/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "tasks", "active", "add"}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// pageData is the input of every page template.
type pageData struct {
	Title    string
	Identity session.Identity
	LoggedIn bool
	Success  []string
	Errors   []string

	// Loading is set until the first successful load. RemoteError is the
	// most recent remote failure, kept until a load succeeds.
	Loading     bool
	RemoteError string
	CSRFToken   string

	Rows    []service.Task
	Empty   bool
	Page    view.PageInfo
	Sorting view.Sorting
	Filter  string

	FormEmail string
	FormTitle string
	FormError string
}

// SortMark returns the direction arrow for the column key, or "".
func (p pageData) SortMark(key string) string {
	if string(p.Sorting.Key) != key {
		return ""
	}
	if p.Sorting.Dir == view.Desc {
		return " ▼"
	}
	return " ▲"
}

// PrevPage and NextPage return 1-based page numbers for pagination links.
func (p pageData) PrevPage() int { return p.Page.Index }
func (p pageData) NextPage() int { return p.Page.Number() + 1 }

// basePage fills the fields shared by the signed-in pages and consumes the
// pending notifications.
func (s *Server) basePage(w http.ResponseWriter, r *http.Request, title string, id session.Identity, ws *workspace, snap state.Snapshot) pageData {
	data := pageData{
		Title:       title,
		Identity:    id,
		LoggedIn:    true,
		Loading:     snap.Loading || (!snap.Loaded && snap.Err == nil),
		RemoteError: snap.ErrMessage(),
		CSRFToken:   csrfToken(s.cookieSession(r)),
	}
	data.Success, data.Errors = s.popFlashes(w, r)
	data.Success = append(ws.popNotices(), data.Success...)
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", "page", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("failed to write page", "page", name, "err", err)
	}
}

// flash queues a one-shot notification for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess := s.cookieSession(r)
	sess.AddFlash(msg, kind)
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("failed to save flash", "err", err)
	}
}

// popFlashes returns and clears the queued notifications.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) (success, failure []string) {
	sess := s.cookieSession(r)
	for _, f := range sess.Flashes(flashSuccess) {
		if msg, ok := f.(string); ok {
			success = append(success, msg)
		}
	}
	for _, f := range sess.Flashes(flashError) {
		if msg, ok := f.(string); ok {
			failure = append(failure, msg)
		}
	}
	if len(success)+len(failure) > 0 {
		if err := sess.Save(r, w); err != nil {
			s.logger.Warn("failed to clear flashes", "err", err)
		}
	}
	return success, failure
}
