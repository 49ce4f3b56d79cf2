package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/output"
	"taskapp/internal/service"
	"taskapp/internal/state"
	"taskapp/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskapp` (no args) and `taskapp list`.
type ListCmd struct {
	sort     string
	desc     bool
	filter   string
	page     int
	pageSize int
	active   bool
}

// SetPage sets the 1-based page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

// SetSort sets the sort column and direction (for testing).
func (c *ListCmd) SetSort(key string, desc bool) {
	c.sort = key
	c.desc = desc
}

// SetFilter sets the title filter (for testing).
func (c *ListCmd) SetFilter(text string) {
	c.filter = text
}

// SetActive restricts the listing to open tasks (for testing).
func (c *ListCmd) SetActive(active bool) {
	c.active = active
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) NeedsAuth() bool    { return true }
func (c *ListCmd) NeedsBackend() bool { return true }
func (c *ListCmd) Usage() string {
	return "taskapp list [--sort id|title|completed] [--desc] [--filter <text>] [--page <n>] [--page-size <n>] [--active]"
}

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.sort, "sort", "", "")
	fs.BoolVar(&c.desc, "desc", false, "")
	fs.StringVar(&c.filter, "filter", "", "")
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.pageSize, "page-size", 0, "")
	fs.BoolVar(&c.active, "active", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}
	if c.pageSize < 0 {
		fmt.Fprintf(errOut, "error: invalid page size: %d\n", c.pageSize)
		return exitcode.UserError
	}
	key, err := view.ParseSortKey(c.sort)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	sorting := view.Sorting{Key: key, Dir: view.Asc}
	if c.desc {
		sorting.Dir = view.Desc
	}

	id, err := currentIdentity(cfg)
	if err != nil {
		return fail(errOut, err)
	}

	store := state.New(svc, commandLogger(cfg, errOut))
	if err := store.Load(ctx, id.OwnerFilter()); err != nil {
		return fail(errOut, err)
	}

	// Admins see every owner's tasks, so rows carry the owner.
	printRow := output.FormatTask
	if id.IsAdmin() {
		printRow = output.FormatTaskOwned
	}

	if c.active {
		rows := view.Active(store.Tasks())
		if len(rows) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no tasks found")
			}
			return exitcode.Success
		}
		for task := range view.Simple(rows, sorting) {
			printRow(out, task)
		}
		return exitcode.Success
	}

	size := c.pageSize
	if size == 0 {
		size = cfg.PageSize
	}
	res := view.Project(store.Tasks(), view.Config{
		Sorting:  sorting,
		Filter:   c.filter,
		Page:     c.page - 1,
		PageSize: size,
	})

	if res.Page.Total == 0 {
		if !cfg.Quiet {
			if c.filter != "" {
				fmt.Fprintln(out, "no results")
			} else {
				fmt.Fprintln(out, "no tasks found")
			}
		}
		return exitcode.Success
	}

	for task := range res.Rows {
		printRow(out, task)
	}
	if !cfg.Quiet {
		output.FormatPage(out, res.Page)
	}
	return exitcode.Success
}
