// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the minimum number of characters in a task title.
const MinTitleLength = 3

// Task represents a single task item.
type Task struct {
	ID        int    `json:"id,omitempty"` // zero until the store assigns one
	UserID    int    `json:"userId,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Pending reports whether the task has not been created remotely yet.
func (t Task) Pending() bool {
	return t.ID == 0
}

// Patch is a partial task update. Nil fields are left unchanged.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	UserID    *int    `json:"userId,omitempty"`
}

// CompletedPatch returns a patch that only sets the completed flag.
func CompletedPatch(completed bool) Patch {
	return Patch{Completed: &completed}
}

// Apply returns t with the non-nil fields of p applied.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	return t
}

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ValidateTitle checks a title before it is sent anywhere.
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(NormalizeTitle(title)) < MinTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: "Title must be at least 3 characters",
		}
	}
	return nil
}
