package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/output"
	"taskapp/internal/service"
	"taskapp/internal/state"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskapp add <title...>" }
func (c *AddCmd) NeedsAuth() bool    { return true }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	id, err := currentIdentity(cfg)
	if err != nil {
		return fail(errOut, err)
	}
	if !id.CanCreate() {
		fmt.Fprintln(errOut, "error: admins cannot add tasks")
		return exitcode.UserError
	}

	store := state.New(svc, commandLogger(cfg, errOut))
	task, err := store.Add(ctx, title, id.UserID)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatTask(out, task)
	}
	return exitcode.Success
}
