package main

import (
	"context"
	"errors"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

// Process exit statuses.
const (
	exitFailure = 1
	exitUsage   = 2
	exitDriver  = 3
	exitTimeout = 4
)

// cliError pins the exit status of a failure.
type cliError struct {
	err  error
	code int
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &cliError{err: err, code: code}
}

// exitCodeForError maps an error to a process exit status. Pinned codes
// win; remote-end failures and timeouts get their own statuses.
func exitCodeForError(err error) int {
	var pinned *cliError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &pinned):
		return pinned.code
	case errors.Is(err, webdriver.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return exitTimeout
	case errors.Is(err, webdriver.ErrDriver), errors.Is(err, webdriver.ErrProtocol), errors.Is(err, webdriver.ErrSessionClosed):
		return exitDriver
	default:
		return exitFailure
	}
}
