// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/state"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, invalid title).
	UserError = 1

	// AuthError indicates a missing or invalid identity.
	AuthError = 2

	// BackendError indicates a remote store or network error.
	BackendError = 3
)

// For maps an error returned by the task layers to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case service.IsValidation(err), errors.Is(err, state.ErrTaskNotFound):
		return UserError
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, session.ErrInvalidCredentials):
		return AuthError
	default:
		return BackendError
	}
}
