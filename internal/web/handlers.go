package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"

	"taskapp/internal/service"
	"taskapp/internal/state"
	"taskapp/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// handleTasks renders the paginated table. The sort, q and page query
// parameters are applied to the table and then dropped by a redirect.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)
	q := r.URL.Query()

	if q.Has("sort") || q.Has("q") || q.Has("page") {
		ws.mu.Lock()
		err := applyTableEvents(ws.table, q.Get("sort"), q.Has("q"), q.Get("q"), q.Get("page"))
		ws.mu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	snap := ws.store.Snapshot()
	ws.mu.Lock()
	res := ws.table.Render(snap.Tasks)
	ws.mu.Unlock()

	data := s.basePage(w, r, "All Tasks", id, ws, snap)
	data.Rows = slices.Collect(res.Rows)
	data.Page = res.Page
	data.Sorting = res.Config.Sorting
	data.Filter = res.Config.Filter
	data.Empty = len(snap.Tasks) == 0
	s.render(w, r, http.StatusOK, "tasks", data)
}

func applyTableEvents(t *view.Table, sort string, hasFilter bool, filter, page string) error {
	if sort != "" {
		key, err := view.ParseSortKey(sort)
		if err != nil {
			return err
		}
		t.ToggleSort(key)
	}
	if hasFilter {
		t.SetFilter(filter)
	}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page number: %s", page)
		}
		t.SetPage(n - 1)
	}
	return nil
}

// handleActive renders the open tasks with the simple id/title sorting.
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)

	if sort := r.URL.Query().Get("sort"); sort != "" {
		key, err := view.ParseSortKey(sort)
		if err != nil || (key != view.SortID && key != view.SortTitle) {
			http.Error(w, "sort must be id or title", http.StatusBadRequest)
			return
		}
		ws.mu.Lock()
		ws.active = view.ToggleSorting(ws.active, key)
		ws.mu.Unlock()
		http.Redirect(w, r, "/active", http.StatusSeeOther)
		return
	}

	snap := ws.store.Snapshot()
	ws.mu.Lock()
	sorting := ws.active
	ws.mu.Unlock()

	data := s.basePage(w, r, "Active Tasks", id, ws, snap)
	data.Rows = slices.Collect(view.Simple(view.Active(snap.Tasks), sorting))
	data.Sorting = sorting
	data.Empty = len(data.Rows) == 0
	s.render(w, r, http.StatusOK, "active", data)
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)
	if !id.CanCreate() {
		http.Error(w, "only standard users can add tasks", http.StatusForbidden)
		return
	}
	data := s.basePage(w, r, "Add Task", id, ws, ws.store.Snapshot())
	s.render(w, r, http.StatusOK, "add", data)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)
	if !id.CanCreate() {
		http.Error(w, "only standard users can add tasks", http.StatusForbidden)
		return
	}

	title := r.FormValue("title")
	_, err := ws.store.Add(detached(r), title, id.UserID)
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		data := s.basePage(w, r, "Add Task", id, ws, ws.store.Snapshot())
		data.FormTitle = title
		data.FormError = verr.Message
		s.render(w, r, http.StatusUnprocessableEntity, "add", data)
	case err != nil:
		s.flash(w, r, flashError, "Failed to add task.")
		http.Redirect(w, r, "/add", http.StatusSeeOther)
	default:
		s.flash(w, r, flashSuccess, "Task added successfully.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, func(ctx context.Context, st *state.Store, id int) (service.Task, error) {
		return st.Toggle(ctx, id)
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, func(ctx context.Context, st *state.Store, id int) (service.Task, error) {
		return st.SetCompleted(ctx, id, true)
	})
}

func (s *Server) setCompleted(w http.ResponseWriter, r *http.Request, change func(context.Context, *state.Store, int) (service.Task, error)) {
	_, ws := requestState(r)
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	if _, found := ws.store.Get(taskID); !found {
		http.Error(w, state.ErrTaskNotFound.Error(), http.StatusNotFound)
		return
	}

	task, err := change(detached(r), ws.store, taskID)
	if err != nil {
		s.flash(w, r, flashError, "Failed to update task.")
	} else {
		status := "Active"
		if task.Completed {
			status = "Completed"
		}
		s.flash(w, r, flashSuccess, fmt.Sprintf("Task \"%s\" marked as %s", task.Title, status))
	}
	http.Redirect(w, r, nextPage(r), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, ws := requestState(r)
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	if _, found := ws.store.Get(taskID); !found {
		http.Error(w, state.ErrTaskNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := ws.store.Remove(detached(r), taskID); err != nil {
		s.flash(w, r, flashError, "Failed to delete task.")
	} else {
		s.flash(w, r, flashSuccess, "Task deleted successfully.")
	}
	http.Redirect(w, r, nextPage(r), http.StatusSeeOther)
}

type apiPage struct {
	Number  int  `json:"number"`
	Count   int  `json:"count"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

type apiTasks struct {
	Tasks     []service.Task `json:"tasks"`
	Page      apiPage        `json:"page"`
	Loading   bool           `json:"loading"`
	Loaded    bool           `json:"loaded"`
	Error     string         `json:"error,omitempty"`
	User      string         `json:"user"`
	CSRFToken string         `json:"csrfToken"`
}

// handleAPITasks returns the current page of the table as JSON.
func (s *Server) handleAPITasks(w http.ResponseWriter, r *http.Request) {
	id, ws := requestState(r)

	snap := ws.store.Snapshot()
	ws.mu.Lock()
	res := ws.table.Render(snap.Tasks)
	ws.mu.Unlock()

	rows := slices.Collect(res.Rows)
	if rows == nil {
		rows = []service.Task{}
	}
	resp := apiTasks{
		Tasks: rows,
		Page: apiPage{
			Number:  res.Page.Number(),
			Count:   res.Page.Count,
			Size:    res.Page.Size,
			Total:   res.Page.Total,
			HasPrev: res.Page.HasPrev,
			HasNext: res.Page.HasNext,
		},
		Loading:   snap.Loading,
		Loaded:    snap.Loaded,
		Error:     snap.ErrMessage(),
		User:      id.DisplayName(),
		CSRFToken: csrfToken(s.cookieSession(r)),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

// taskIDVar parses the {id} route variable, answering 400 when it is not a
// positive integer.
func taskIDVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		http.Error(w, "invalid task id: "+raw, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// nextPage returns the page a task action redirects to.
func nextPage(r *http.Request) string {
	if r.FormValue("next") == "/active" {
		return "/active"
	}
	return "/"
}

// detached returns the request context without its cancellation.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
