package output_test

import (
	"bytes"
	"testing"

	"taskapp/internal/output"
	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/testutil"
	"taskapp/internal/view"
)

func TestFormatTasks(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTask(&buf, service.Task{ID: 1, Title: "Buy milk"})
	output.FormatTask(&buf, service.Task{ID: 2, Title: "Walk\ndog", Completed: true})
	output.FormatTask(&buf, service.Task{ID: 12, Title: "  "})
	output.FormatPage(&buf, view.PageInfo{Index: 0, Count: 2, Size: 3, Total: 4})

	testutil.Golden(t, "tasks", buf.Bytes())
}

func TestFormatTasksOwned(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskOwned(&buf, service.Task{ID: 1, UserID: 3, Title: "Buy milk"})
	output.FormatTaskOwned(&buf, service.Task{ID: 205, UserID: 10, Title: "Call mom", Completed: true})
	output.FormatPage(&buf, view.PageInfo{Index: 1, Count: 2, Size: 1, Total: 1})

	testutil.Golden(t, "tasks_owned", buf.Bytes())
}

func TestFormatIdentity(t *testing.T) {
	tests := []struct {
		id   session.Identity
		want string
	}{
		{session.Identity{Role: session.RoleAdmin, Email: "admin@taskapp.com"}, "admin@taskapp.com (admin)\n"},
		{session.Identity{Role: session.RoleUser, UserID: 5, Email: "a@b.c"}, "a@b.c (user 5)\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		output.FormatIdentity(&buf, tt.id)
		if buf.String() != tt.want {
			t.Errorf("expected %q, got %q", tt.want, buf.String())
		}
	}
}
