package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/logging"
	"taskapp/internal/service"
	"taskapp/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the web front end.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Serve the web interface" }
func (c *ServeCmd) Usage() string      { return "taskapp serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsAuth() bool    { return false }
func (c *ServeCmd) NeedsBackend() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	logger := logging.New(errOut, cfg.Debug)
	srv, err := web.New(cfg, svc, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "serving on http://%s\n", displayAddr(addr))
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// displayAddr turns ":3000" into "localhost:3000".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
