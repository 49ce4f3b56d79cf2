// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// ListOptions narrows a List call.
type ListOptions struct {
	// UserID restricts the result to one owner's tasks.
	// Zero lists every owner's tasks (admin view).
	UserID int
}

// Service defines the interface for remote task store operations.
// All remote calls go through this interface.
// Front ends never talk HTTP to the store directly.
type Service interface {
	// List returns tasks in remote order.
	List(ctx context.Context, opts ListOptions) ([]Task, error)

	// Create stores a task that has no ID yet.
	// Returns the task with the ID assigned by the store.
	Create(ctx context.Context, task Task) (Task, error)

	// Update applies a partial update to the task with the given ID.
	// Returns the copy confirmed by the store.
	Update(ctx context.Context, id int, patch Patch) (Task, error)

	// Delete removes the task with the given ID.
	Delete(ctx context.Context, id int) error
}
