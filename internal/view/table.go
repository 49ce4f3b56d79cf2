package view

import "taskapp/internal/service"

// Table holds the view configuration of one table and applies UI events to it.
// A Table is not safe for concurrent use.
type Table struct {
	cfg Config
}

// NewTable creates a table showing pageSize rows per page in collection order.
func NewTable(pageSize int) *Table {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Table{cfg: Config{Sorting: Sorting{Dir: Asc}, PageSize: pageSize}}
}

// Config returns the current configuration.
func (t *Table) Config() Config {
	return t.cfg
}

// ToggleSort sorts by key. Selecting the current key flips the direction;
// a new key starts ascending.
func (t *Table) ToggleSort(key SortKey) {
	t.cfg.Sorting = ToggleSorting(t.cfg.Sorting, key)
}

// SetFilter sets the title filter and returns to the first page.
func (t *Table) SetFilter(text string) {
	if text == t.cfg.Filter {
		return
	}
	t.cfg.Filter = text
	t.cfg.Page = 0
}

// SetPage moves to a 0-based page. Out-of-range pages are clamped on Render.
func (t *Table) SetPage(index int) {
	t.cfg.Page = max(index, 0)
}

// Render projects tasks and keeps the clamped page index.
func (t *Table) Render(tasks []service.Task) Result {
	res := Project(tasks, t.cfg)
	t.cfg = res.Config
	return res
}

// ToggleSorting returns the sorting after a click on key's column header.
func ToggleSorting(cur Sorting, key SortKey) Sorting {
	if key == cur.Key && key != SortNone && cur.Dir == Asc {
		return Sorting{Key: key, Dir: Desc}
	}
	return Sorting{Key: key, Dir: Asc}
}
