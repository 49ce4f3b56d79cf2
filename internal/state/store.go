// Package state owns the in-memory task collection of one session and keeps it
// in step with the remote store. Local state changes only after the remote
// store has confirmed the mutation.
package state

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"taskapp/internal/logging"
	"taskapp/internal/service"
	"taskapp/internal/session"
)

// ErrTaskNotFound is returned when a task ID is not in the local collection.
var ErrTaskNotFound = errors.New("task not found")

// Snapshot is a read-only copy of the store.
type Snapshot struct {
	Tasks   []service.Task
	Loading bool
	Loaded  bool
	Err     error // most recent failure, nil when none
}

// ErrMessage returns the human-readable error, or "" when there is none.
func (s Snapshot) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Store is the task collection of one session. Safe for concurrent use.
type Store struct {
	svc    service.Service
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []service.Task
	loading bool
	loaded  bool
	err     error

	// seq numbers mutations in issue order; applied holds, per task ID, the
	// seq of the mutation whose confirmation produced the current record.
	seq     uint64
	applied map[int]uint64
}

// New creates an empty store backed by svc.
func New(svc service.Service, logger *slog.Logger) *Store {
	return &Store{
		svc:     svc,
		logger:  logging.OrDiscard(logger),
		applied: make(map[int]uint64),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Tasks:   slices.Clone(s.tasks),
		Loading: s.loading,
		Loaded:  s.loaded,
		Err:     s.err,
	}
}

// Tasks returns a copy of the collection.
func (s *Store) Tasks() []service.Task {
	return s.Snapshot().Tasks
}

// Get returns the local record with the given ID.
func (s *Store) Get(id int) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, false
	}
	return s.tasks[i], true
}

// Load replaces the collection with the remote tasks of ownerID
// (zero loads every owner's tasks). On failure the collection is left as is.
func (s *Store) Load(ctx context.Context, ownerID int) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	return s.load(ctx, ownerID)
}

// load runs a list call for a store already marked loading.
func (s *Store) load(ctx context.Context, ownerID int) error {
	tasks, err := s.svc.List(ctx, service.ListOptions{UserID: ownerID})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fail("load", err)
		return err
	}
	s.tasks = slices.Clone(tasks)
	s.applied = make(map[int]uint64)
	s.loaded = true
	s.err = nil
	return nil
}

// EnsureLoaded loads the identity's tasks once identity is available.
// It does nothing when id is not resolved, a load is running, or the
// collection was already loaded. Reports whether a load was started.
func (s *Store) EnsureLoaded(ctx context.Context, id session.Identity) (bool, error) {
	if !id.Resolved() {
		return false, nil
	}
	s.mu.Lock()
	if s.loading || s.loaded {
		s.mu.Unlock()
		return false, nil
	}
	s.loading = true
	s.mu.Unlock()
	return true, s.load(ctx, id.OwnerFilter())
}

// Add creates a task remotely and appends the confirmed record. A confirmed
// ID already in the collection replaces that record unless a later mutation
// of it has been confirmed first.
// Titles that fail validation are rejected without a remote call and
// without touching the error slot.
func (s *Store) Add(ctx context.Context, title string, ownerID int) (service.Task, error) {
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, err
	}
	seq := s.next()

	created, err := s.svc.Create(ctx, service.Task{
		UserID: ownerID,
		Title:  service.NormalizeTitle(title),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail("add", err)
		return service.Task{}, err
	}
	if i := s.indexOf(created.ID); i >= 0 {
		if s.applied[created.ID] > seq {
			s.logger.Debug("dropping stale confirmation", "id", created.ID, "seq", seq, "applied", s.applied[created.ID])
			return s.tasks[i], nil
		}
		s.tasks[i] = created
	} else {
		s.tasks = append(s.tasks, created)
	}
	s.applied[created.ID] = seq
	return created, nil
}

// SetCompleted sets the completed flag remotely and replaces the local record
// with the confirmed copy. A confirmation older than the record's current one,
// or for a task removed meanwhile, is discarded.
func (s *Store) SetCompleted(ctx context.Context, id int, completed bool) (service.Task, error) {
	seq := s.next()

	updated, err := s.svc.Update(ctx, id, service.CompletedPatch(completed))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail("update", err)
		return service.Task{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("dropping confirmation for missing task", "id", id)
		return updated, nil
	}
	if s.applied[id] > seq {
		s.logger.Debug("dropping stale confirmation", "id", id, "seq", seq, "applied", s.applied[id])
		return s.tasks[i], nil
	}
	updated.ID = id
	s.tasks[i] = updated
	s.applied[id] = seq
	return updated, nil
}

// Toggle flips the completed flag of a task in the collection.
func (s *Store) Toggle(ctx context.Context, id int) (service.Task, error) {
	t, ok := s.Get(id)
	if !ok {
		return service.Task{}, ErrTaskNotFound
	}
	return s.SetCompleted(ctx, id, !t.Completed)
}

// Remove deletes a task remotely and excises it locally on success.
func (s *Store) Remove(ctx context.Context, id int) error {
	seq := s.next()

	err := s.svc.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail("delete", err)
		return err
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
	s.applied[id] = seq
	return nil
}

// ClearError empties the error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}

func (s *Store) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// fail records err in the error slot. Callers hold mu.
func (s *Store) fail(action string, err error) {
	s.err = err
	s.logger.Warn("task "+action+" failed", "err", err)
}

// indexOf returns the position of id in the collection, or -1. Callers hold mu.
func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}
