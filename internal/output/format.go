// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/view"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TITLE}\n" with a blank box for open tasks.
func FormatTask(w io.Writer, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", task.ID, mark, normalizeTitle(task.Title))
}

// FormatTaskOwned formats a task line followed by its owner, for admins.
func FormatTaskOwned(w io.Writer, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s  (user %d)\n", task.ID, mark, normalizeTitle(task.Title), task.UserID)
}

// FormatPage formats the pagination footer of a table.
func FormatPage(w io.Writer, p view.PageInfo) {
	noun := "tasks"
	if p.Total == 1 {
		noun = "task"
	}
	fmt.Fprintf(w, "page %d/%d, %d %s\n", p.Number(), p.Count, p.Total, noun)
}

// FormatIdentity formats the signed-in identity.
func FormatIdentity(w io.Writer, id session.Identity) {
	if id.IsAdmin() {
		fmt.Fprintf(w, "%s (admin)\n", id.Email)
		return
	}
	fmt.Fprintf(w, "%s (user %d)\n", id.Email, id.UserID)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
