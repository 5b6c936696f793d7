package webdriver

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed     = errors.New("webdriver session closed")
	ErrSessionNotStarted = errors.New("webdriver session not started")
	ErrAlreadyStarted    = errors.New("webdriver session already started")
	ErrInvalidHandle     = errors.New("invalid handle: owning session is gone")
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrProtocol          = errors.New("protocol error")

	// ErrDriver matches every error reported by the remote end.
	ErrDriver = errors.New("webdriver error")

	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidSessionID       = errors.New("invalid session id")
	ErrSessionNotCreated      = errors.New("session not created")
	ErrUnknownCommand         = errors.New("unknown command")
	ErrUnsupportedOperation   = errors.New("unsupported operation")
	ErrNoSuchElement          = errors.New("no such element")
	ErrNoSuchFrame            = errors.New("no such frame")
	ErrNoSuchWindow           = errors.New("no such window")
	ErrNoSuchCookie           = errors.New("no such cookie")
	ErrNoSuchAlert            = errors.New("no such alert")
	ErrNoSuchShadowRoot       = errors.New("no such shadow root")
	ErrStaleElement           = errors.New("stale element reference")
	ErrElementNotInteractable = errors.New("element not interactable")
	ErrUnexpectedAlert        = errors.New("unexpected alert open")
	ErrTimeout                = errors.New("timeout")
	ErrJavascript             = errors.New("javascript error")
	ErrInvalidSelector        = errors.New("invalid selector")
)

// W3C error codes as carried in value.error.
const (
	CodeInvalidArgument         = "invalid argument"
	CodeInvalidSessionID        = "invalid session id"
	CodeSessionNotCreated       = "session not created"
	CodeUnknownCommand          = "unknown command"
	CodeUnknownMethod           = "unknown method"
	CodeUnsupportedOperation    = "unsupported operation"
	CodeNoSuchElement           = "no such element"
	CodeNoSuchFrame             = "no such frame"
	CodeNoSuchWindow            = "no such window"
	CodeNoSuchCookie            = "no such cookie"
	CodeNoSuchAlert             = "no such alert"
	CodeNoSuchShadowRoot        = "no such shadow root"
	CodeStaleElement            = "stale element reference"
	CodeDetachedShadowRoot      = "detached shadow root"
	CodeElementNotVisible       = "element not visible"
	CodeElementNotSelectable    = "element not selectable"
	CodeElementNotInteractable  = "element not interactable"
	CodeElementClickIntercepted = "element click intercepted"
	CodeInvalidElementState     = "invalid element state"
	CodeInvalidElementCoords    = "invalid element coordinates"
	CodeUnexpectedAlertOpen     = "unexpected alert open"
	CodeTimeout                 = "timeout"
	CodeScriptTimeout           = "script timeout"
	CodeJavascriptError         = "javascript error"
	CodeInvalidSelector         = "invalid selector"
	CodeInvalidXPathSelector    = "invalid xpath selector"
	CodeInvalidCookieDomain     = "invalid cookie domain"
	CodeUnableToSetCookie       = "unable to set cookie"
	CodeUnableToCaptureScreen   = "unable to capture screen"
	CodeMoveTargetOutOfBounds   = "move target out of bounds"
	CodeIMENotAvailable         = "ime not available"
	CodeIMEEngineActivation     = "ime engine activation failed"
	CodeUnknownError            = "unknown error"
)

// Legacy status codes.
const (
	StatusSuccess      = 0
	StatusUnknownError = 13
)

var legacyStatus = map[int]string{
	6:   CodeInvalidSessionID,
	7:   CodeNoSuchElement,
	8:   CodeNoSuchFrame,
	9:   CodeUnknownCommand,
	10:  CodeStaleElement,
	11:  CodeElementNotVisible,
	12:  CodeInvalidElementState,
	13:  CodeUnknownError,
	15:  CodeElementNotSelectable,
	17:  CodeJavascriptError,
	19:  CodeInvalidSelector,
	21:  CodeTimeout,
	23:  CodeNoSuchWindow,
	24:  CodeInvalidCookieDomain,
	25:  CodeUnableToSetCookie,
	26:  CodeUnexpectedAlertOpen,
	27:  CodeNoSuchAlert,
	28:  CodeScriptTimeout,
	29:  CodeInvalidElementCoords,
	30:  CodeIMENotAvailable,
	31:  CodeIMEEngineActivation,
	32:  CodeInvalidSelector,
	33:  CodeSessionNotCreated,
	34:  CodeMoveTargetOutOfBounds,
	51:  CodeInvalidXPathSelector,
	52:  CodeInvalidXPathSelector,
	60:  CodeElementNotInteractable,
	61:  CodeInvalidArgument,
	62:  CodeNoSuchCookie,
	63:  CodeUnableToCaptureScreen,
	64:  CodeElementClickIntercepted,
	405: CodeUnsupportedOperation,
}

var codeSentinels = map[string]error{
	CodeInvalidArgument:         ErrInvalidArgument,
	CodeInvalidSessionID:        ErrInvalidSessionID,
	CodeSessionNotCreated:       ErrSessionNotCreated,
	CodeUnknownCommand:          ErrUnknownCommand,
	CodeUnknownMethod:           ErrUnknownCommand,
	CodeUnsupportedOperation:    ErrUnsupportedOperation,
	CodeNoSuchElement:           ErrNoSuchElement,
	CodeNoSuchFrame:             ErrNoSuchFrame,
	CodeNoSuchWindow:            ErrNoSuchWindow,
	CodeNoSuchCookie:            ErrNoSuchCookie,
	CodeNoSuchAlert:             ErrNoSuchAlert,
	CodeNoSuchShadowRoot:        ErrNoSuchShadowRoot,
	CodeStaleElement:            ErrStaleElement,
	CodeDetachedShadowRoot:      ErrStaleElement,
	CodeElementNotVisible:       ErrElementNotInteractable,
	CodeElementNotSelectable:    ErrElementNotInteractable,
	CodeElementNotInteractable:  ErrElementNotInteractable,
	CodeElementClickIntercepted: ErrElementNotInteractable,
	CodeInvalidElementState:     ErrElementNotInteractable,
	CodeUnexpectedAlertOpen:     ErrUnexpectedAlert,
	CodeTimeout:                 ErrTimeout,
	CodeScriptTimeout:           ErrTimeout,
	CodeJavascriptError:         ErrJavascript,
	CodeInvalidSelector:         ErrInvalidSelector,
	CodeInvalidXPathSelector:    ErrInvalidSelector,
}

var knownCodes = map[string]bool{
	CodeInvalidCookieDomain:   true,
	CodeUnableToSetCookie:     true,
	CodeUnableToCaptureScreen: true,
	CodeMoveTargetOutOfBounds: true,
	CodeIMENotAvailable:       true,
	CodeIMEEngineActivation:   true,
	CodeInvalidElementCoords:  true,
	CodeUnknownError:          true,
}

// KnownCode reports whether code is a W3C or mapped legacy error code.
func KnownCode(code string) bool {
	if _, ok := codeSentinels[code]; ok {
		return true
	}
	return knownCodes[code]
}

// StatusCode returns the error code for a legacy numeric status.
func StatusCode(status int) (string, bool) {
	code, ok := legacyStatus[status]
	return code, ok
}

// DriverError is a failure reported by the remote end.
type DriverError struct {
	Code       string
	Status     int
	HTTPStatus int
	Message    string
	Stacktrace string
	// Value is the raw response value, kept for diagnostics.
	Value any
}

func (e *DriverError) Error() string {
	code := e.Code
	if code == "" {
		code = CodeUnknownError
	}
	if e.Message != "" {
		return fmt.Sprintf("webdriver error [%s]: %s", code, e.Message)
	}
	if s, ok := e.Value.(string); ok && s != "" {
		return fmt.Sprintf("webdriver error [%s]: %s", code, s)
	}
	return fmt.Sprintf("webdriver error [%s]", code)
}

func (e *DriverError) Unwrap() []error {
	if sentinel, ok := codeSentinels[e.Code]; ok {
		return []error{sentinel, ErrDriver}
	}
	return []error{ErrDriver}
}

// IsNotFound reports whether err is one of the lookup failures a caller may
// poll on: missing elements, frames, windows, cookies, alerts or shadow roots.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNoSuchElement,
		ErrNoSuchFrame,
		ErrNoSuchWindow,
		ErrNoSuchCookie,
		ErrNoSuchAlert,
		ErrNoSuchShadowRoot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a command that failed with err may succeed
// if reissued after the page settles.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return IsNotFound(err) ||
		errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrElementNotInteractable)
}
