package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/state"
	"taskapp/internal/view"
)

// workspace is the per-browser-session state: the task collection and the
// view configuration of both tables.
type workspace struct {
	id    string
	store *state.Store

	mu      sync.Mutex // guards the fields below
	table   *view.Table
	active  view.Sorting
	notices []string
}

// popNotices returns and clears the notices produced in the background.
func (ws *workspace) popNotices() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	n := ws.notices
	ws.notices = nil
	return n
}

func (ws *workspace) notify(msg string) {
	ws.mu.Lock()
	ws.notices = append(ws.notices, msg)
	ws.mu.Unlock()
}

const (
	// workspaceIdle is how long a workspace survives without requests.
	workspaceIdle = 24 * time.Hour
	// maxWorkspaces bounds the live workspaces; creating one more evicts
	// the least recently used.
	maxWorkspaces = 1000
)

// workspaces indexes live workspaces by their UUID. Workspaces whose session
// never comes back are evicted once idle, or when the limit is reached.
type workspaces struct {
	svc      service.Service
	logger   *slog.Logger
	pageSize int
	idle     time.Duration
	limit    int
	now      func() time.Time

	mu       sync.Mutex
	byID     map[string]*workspace
	lastUsed map[string]time.Time
	loads    sync.WaitGroup
}

func newWorkspaces(svc service.Service, logger *slog.Logger, pageSize int) *workspaces {
	return &workspaces{
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
		idle:     workspaceIdle,
		limit:    maxWorkspaces,
		now:      time.Now,
		byID:     make(map[string]*workspace),
		lastUsed: make(map[string]time.Time),
	}
}

// create registers an empty workspace under a fresh ID, evicting idle ones
// first.
func (w *workspaces) create() *workspace {
	ws := &workspace{
		id:     uuid.NewString(),
		store:  state.New(w.svc, w.logger),
		table:  view.NewTable(w.pageSize),
		active: view.Sorting{Key: view.SortID, Dir: view.Asc},
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.evict(now)
	w.byID[ws.id] = ws
	w.lastUsed[ws.id] = now
	return ws
}

// get returns a live workspace and marks it used.
func (w *workspaces) get(id string) (*workspace, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	now := w.now()
	if now.Sub(w.lastUsed[id]) > w.idle {
		w.remove(id)
		return nil, false
	}
	w.lastUsed[id] = now
	return ws, true
}

func (w *workspaces) drop(id string) {
	w.mu.Lock()
	w.remove(id)
	w.mu.Unlock()
}

func (w *workspaces) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byID)
}

// evict removes idle workspaces, then the least recently used ones until
// there is room for one more. Callers hold mu.
func (w *workspaces) evict(now time.Time) {
	for id, used := range w.lastUsed {
		if now.Sub(used) > w.idle {
			w.remove(id)
		}
	}
	for w.limit > 0 && len(w.byID) >= w.limit {
		var oldest string
		var oldestUsed time.Time
		for id, used := range w.lastUsed {
			if oldest == "" || used.Before(oldestUsed) {
				oldest, oldestUsed = id, used
			}
		}
		w.remove(oldest)
	}
}

// remove deletes a workspace. Callers hold mu.
func (w *workspaces) remove(id string) {
	if _, ok := w.byID[id]; !ok {
		return
	}
	delete(w.byID, id)
	delete(w.lastUsed, id)
	w.logger.Debug("workspace discarded", "workspace", id)
}

// load fetches the identity's tasks in the background unless the workspace
// is already loaded or loading.
func (w *workspaces) load(ws *workspace, id session.Identity) {
	snap := ws.store.Snapshot()
	if snap.Loaded || snap.Loading {
		return
	}
	w.loads.Add(1)
	go func() {
		defer w.loads.Done()
		started, err := ws.store.EnsureLoaded(context.Background(), id)
		if started && err == nil {
			ws.notify("Tasks fetched successfully.")
		}
	}()
}

// wait blocks until background loads have finished.
func (w *workspaces) wait() {
	w.loads.Wait()
}
