// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"taskapp/internal/service"
)

// FirstCreatedID is the first ID FakeService assigns, matching JSONPlaceholder.
const FirstCreatedID = 201

// ErrNotFound is returned when a task is not in the fake store.
var ErrNotFound = errors.New("not found")

// ErrNetwork simulates a transport failure.
var ErrNetwork = errors.New("network unreachable")

// Call records one invocation of FakeService.
type Call struct {
	Op string
	ID int
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  []Call

	// Error injection for testing. Injected errors are wrapped in
	// service.RemoteError like the HTTP client does.
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Hooks run after the fake applied a change and before it replies,
	// outside its lock. Tests use them to hold a reply and reorder responses.
	OnUpdate func(ctx context.Context, id int, patch service.Patch)
	OnDelete func(ctx context.Context, id int)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: FirstCreatedID}
}

// AddTask seeds a task.
func (f *FakeService) AddTask(id, userID int, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, UserID: userID, Title: title, Completed: completed})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// IDs returns the stored task IDs in order.
func (f *FakeService) IDs() []int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]int, len(f.tasks))
	for i, t := range f.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Calls returns the recorded calls.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many calls of op were made.
func (f *FakeService) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *FakeService) record(op string, id int) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, ID: id})
	f.mu.Unlock()
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context, opts service.ListOptions) ([]service.Task, error) {
	f.record(service.OpList, opts.UserID)
	if f.ListErr != nil {
		return nil, &service.RemoteError{Op: service.OpList, Cause: f.ListErr}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := []service.Task{}
	for _, t := range f.tasks {
		if opts.UserID == 0 || t.UserID == opts.UserID {
			result = append(result, t)
		}
	}
	return result, nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, task service.Task) (service.Task, error) {
	f.record(service.OpCreate, 0)
	if f.CreateErr != nil {
		return service.Task{}, &service.RemoteError{Op: service.OpCreate, Cause: f.CreateErr}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task.ID = f.nextID
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id int, patch service.Patch) (service.Task, error) {
	f.record(service.OpUpdate, id)
	if f.UpdateErr != nil {
		return service.Task{}, &service.RemoteError{Op: service.OpUpdate, ID: id, Cause: f.UpdateErr}
	}

	f.mu.Lock()
	i := slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		f.mu.Unlock()
		return service.Task{}, &service.RemoteError{Op: service.OpUpdate, ID: id, Status: 404, Cause: ErrNotFound}
	}
	f.tasks[i] = patch.Apply(f.tasks[i])
	updated := f.tasks[i]
	f.mu.Unlock()

	if f.OnUpdate != nil {
		f.OnUpdate(ctx, id, patch)
	}
	return updated, nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id int) error {
	f.record(service.OpDelete, id)
	if f.DeleteErr != nil {
		return &service.RemoteError{Op: service.OpDelete, ID: id, Cause: f.DeleteErr}
	}

	f.mu.Lock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	f.mu.Unlock()

	if f.OnDelete != nil {
		f.OnDelete(ctx, id)
	}
	return nil
}
