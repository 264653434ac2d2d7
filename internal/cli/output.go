package cli

import (
	"errors"
	"fmt"
)

// Process exit statuses. Anything that is not an *ExitError exits with
// ExitFailure.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the simulation or server failed while running
	ExitCommandError = 2 // bad flags, env or config; nothing was started
)

// ExitError carries the status main should exit with alongside the cause.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError attaches code and a short context message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps the error returned by Execute to a process status.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// commandErrorf is a convenience for flag validation failures.
func commandErrorf(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf(format, args...)}
}
