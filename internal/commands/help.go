package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskapp help" }
func (c *HelpCmd) NeedsAuth() bool    { return false }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskapp                                   List your tasks (first page)
  taskapp list [common flags] [--sort id|title|completed] [--desc]
               [--filter <text>] [--page <n>] [--page-size <n>] [--active]
  taskapp add [common flags] <title...>
  taskapp done [common flags] <id>
  taskapp undo [common flags] <id>
  taskapp rm [common flags] <id>
  taskapp login [common flags] --email <email> --password <password>
  taskapp logout [common flags]
  taskapp whoami [common flags]
  taskapp serve [common flags] [--addr <host:port>]
  taskapp help
  taskapp version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Exit codes:
  0 success, 1 usage or validation error, 2 not logged in, 3 remote store error
`
