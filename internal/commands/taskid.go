package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/logging"
	"taskapp/internal/session"
)

// ErrTaskIDRequired indicates no task ID was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses the task ID from the first positional argument.
// IDs are positive integers as assigned by the remote store.
func ParseTaskID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// currentIdentity reads the identity saved by login.
func currentIdentity(cfg *config.Config) (session.Identity, error) {
	return session.LoadFile(cfg.SessionPath())
}

// commandLogger returns a stderr logger in debug mode and a discarding one otherwise.
// Command failures are reported as error lines, not log records.
func commandLogger(cfg *config.Config, errOut io.Writer) *slog.Logger {
	if !cfg.Debug {
		return logging.Discard()
	}
	return logging.New(errOut, true)
}

// fail prints err and returns its exit code.
func fail(errOut io.Writer, err error) int {
	code := exitcode.For(err)
	if code == exitcode.BackendError {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}
