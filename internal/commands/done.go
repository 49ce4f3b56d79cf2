package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/service"
	"taskapp/internal/state"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskapp done <id>" }
func (c *DoneCmd) NeedsAuth() bool    { return true }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, args, true, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string   { return "Mark a task active again" }
func (c *UndoCmd) Usage() string      { return "taskapp undo <id>" }
func (c *UndoCmd) NeedsAuth() bool    { return true }
func (c *UndoCmd) NeedsBackend() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, args, false, out, errOut)
}

// runSetCompleted is the shared implementation for done and undo.
// Only tasks visible to the signed-in identity can be changed.
func runSetCompleted(ctx context.Context, cfg *config.Config, svc service.Service, args []string, completed bool, out, errOut io.Writer) int {
	taskID, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	store, code := loadVisible(ctx, cfg, svc, taskID, errOut)
	if store == nil {
		return code
	}

	if _, err := store.SetCompleted(ctx, taskID, completed); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// loadVisible loads the identity's tasks and checks that taskID is among them.
// On failure it reports the error and returns a nil store with the exit code.
func loadVisible(ctx context.Context, cfg *config.Config, svc service.Service, taskID int, errOut io.Writer) (*state.Store, int) {
	id, err := currentIdentity(cfg)
	if err != nil {
		return nil, fail(errOut, err)
	}

	store := state.New(svc, commandLogger(cfg, errOut))
	if err := store.Load(ctx, id.OwnerFilter()); err != nil {
		return nil, fail(errOut, err)
	}
	if _, ok := store.Get(taskID); !ok {
		return nil, fail(errOut, fmt.Errorf("%w: %d", state.ErrTaskNotFound, taskID))
	}
	return store, exitcode.Success
}
