package browser

import (
	"errors"
	"fmt"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

var (
	ErrUnavailable   = errors.New("browser runtime unavailable")
	ErrSessionClosed = errors.New("browser session closed")
	ErrSessionExists = errors.New("browser session already exists")
	ErrUnknownAction = errors.New("unknown browser action")
)

// RuntimeError wraps a failure from a runtime with the operation and session
// it belongs to.
type RuntimeError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *RuntimeError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("browser %s [%s]: %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("browser %s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func wrapError(op, sessionID string, err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Op: op, SessionID: sessionID, Err: err}
}

// IsConnectionError returns true if the remote session is gone.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, webdriver.ErrSessionClosed) ||
		errors.Is(err, webdriver.ErrInvalidSessionID)
}

// IsRetryableError returns true if the error might succeed on retry.
func IsRetryableError(err error) bool {
	if err == nil || IsConnectionError(err) {
		return false
	}
	return webdriver.IsRetryable(err) || errors.Is(err, webdriver.ErrTimeout)
}
