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
	"taskapp/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
	auth     *session.Authenticator
}

// SetCredentials sets the email and password (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

// SetAuthenticator replaces the authenticator built from config (for testing).
func (c *LoginCmd) SetAuthenticator(a *session.Authenticator) {
	c.auth = a
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Sign in" }
func (c *LoginCmd) Usage() string      { return "taskapp login --email <email> --password <password>" }
func (c *LoginCmd) NeedsAuth() bool    { return false }
func (c *LoginCmd) NeedsBackend() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.HasSession() {
		if id, err := currentIdentity(cfg); err == nil {
			if !cfg.Quiet {
				fmt.Fprint(out, "already logged in as ")
				output.FormatIdentity(out, id)
			}
			return exitcode.Success
		}
	}

	auth := c.auth
	if auth == nil {
		auth = session.NewAuthenticator(cfg.AdminEmail)
	}
	id, err := auth.Login(c.email, c.password)
	if err != nil {
		return fail(errOut, err)
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := session.SaveFile(cfg.SessionPath(), id); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprint(out, "logged in as ")
		output.FormatIdentity(out, id)
	}
	return exitcode.Success
}
