// Package view derives what a task table displays: filtered, sorted and
// paginated rows over a snapshot of the collection.
package view

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"taskapp/internal/service"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 10

// SortKey names the column rows are sorted by.
type SortKey string

const (
	SortNone      SortKey = "" // collection order
	SortID        SortKey = "id"
	SortTitle     SortKey = "title"
	SortCompleted SortKey = "completed"
)

// ParseSortKey accepts "", "id", "title" and "completed".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortID, SortTitle, SortCompleted:
		return k, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key: %s", s)
	}
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sorting is a sort key with a direction.
type Sorting struct {
	Key SortKey
	Dir Direction
}

// Config is the view configuration of a paginated table.
type Config struct {
	Sorting
	Filter   string
	Page     int // 0-based
	PageSize int
}

// PageInfo is the pagination metadata of a projection.
type PageInfo struct {
	Index   int // 0-based, clamped
	Count   int // at least 1
	Size    int
	Total   int // rows after filtering
	HasPrev bool
	HasNext bool
}

// Number returns the 1-based page number.
func (p PageInfo) Number() int {
	return p.Index + 1
}

// Result is one projection of a collection.
type Result struct {
	// Rows yields the rows of the current page. It can be ranged over repeatedly.
	Rows iter.Seq[service.Task]
	Page PageInfo
	// Config is the input configuration with Page clamped to the valid range.
	Config Config
}

// Project filters, sorts and paginates tasks. The same tasks and
// configuration always produce the same result; tasks is not modified.
func Project(tasks []service.Task, cfg Config) Result {
	rows := filter(tasks, cfg.Filter)
	sortRows(rows, cfg.Sorting)

	size := cfg.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	count := max(1, (len(rows)+size-1)/size)
	index := min(max(cfg.Page, 0), count-1)

	start := min(index*size, len(rows))
	end := min(start+size, len(rows))
	page := rows[start:end]

	cfg.Page = index
	return Result{
		Rows: slices.Values(page),
		Page: PageInfo{
			Index:   index,
			Count:   count,
			Size:    size,
			Total:   len(rows),
			HasPrev: index > 0,
			HasNext: index < count-1,
		},
		Config: cfg,
	}
}

// Simple sorts tasks by ID or title without filtering or pagination.
// Other keys keep collection order.
func Simple(tasks []service.Task, s Sorting) iter.Seq[service.Task] {
	rows := slices.Clone(tasks)
	if s.Key == SortID || s.Key == SortTitle {
		sortRows(rows, s)
	}
	return slices.Values(rows)
}

// Active returns the tasks that are not completed, in collection order.
func Active(tasks []service.Task) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether the title contains text, ignoring case.
func Matches(t service.Task, text string) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(text))
}

// filter returns a copy of the tasks whose title matches text.
func filter(tasks []service.Task, text string) []service.Task {
	if text == "" {
		return slices.Clone(tasks)
	}
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, text) {
			out = append(out, t)
		}
	}
	return out
}

// sortRows stable-sorts rows in place. Equal keys keep collection order in
// both directions.
func sortRows(rows []service.Task, s Sorting) {
	if s.Key == SortNone {
		return
	}
	slices.SortStableFunc(rows, func(a, b service.Task) int {
		c := compare(a, b, s.Key)
		if s.Dir == Desc {
			return -c
		}
		return c
	})
}

// compare orders two tasks by key: numeric for IDs, byte-wise for titles,
// false before true for the completed flag.
func compare(a, b service.Task, key SortKey) int {
	switch key {
	case SortID:
		return cmp.Compare(a.ID, b.ID)
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortCompleted:
		return cmp.Compare(boolInt(a.Completed), boolInt(b.Completed))
	default:
		return 0
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
