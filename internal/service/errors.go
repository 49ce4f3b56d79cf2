package service

import (
	"context"
	"errors"
	"fmt"
)

// Remote operation names carried by RemoteError.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RemoteError reports a failed call to the remote task store:
// a network failure, a timeout or a non-success status.
type RemoteError struct {
	Op     string
	ID     int // task ID for update and delete, zero otherwise
	Status int // HTTP status, zero when no response was received
	Cause  error
}

func (e *RemoteError) Error() string {
	what := map[string]string{
		OpList:   "fetch tasks",
		OpCreate: "add task",
		OpUpdate: "update task",
		OpDelete: "delete task",
	}[e.Op]
	if what == "" {
		what = e.Op
	}
	if e.ID != 0 {
		what = fmt.Sprintf("%s %d", what, e.ID)
	}
	if e.Timeout() {
		return fmt.Sprintf("failed to %s: request timed out", what)
	}
	return fmt.Sprintf("failed to %s: %v", what, e.Cause)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call ran out of time.
func (e *RemoteError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Cause, &te) && te.Timeout()
}

// IsRemote reports whether err is or wraps a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// ValidationError reports input rejected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
