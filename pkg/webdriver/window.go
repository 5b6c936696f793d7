package webdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

const currentWindow = "current"

// WindowHandle returns the handle of the current window.
func (s *Session) WindowHandle(ctx context.Context) (string, error) {
	id := command.GetCurrentWindowHandle
	if s.W3C() {
		id = command.W3CGetCurrentWindowHandle
	}
	v, err := s.value(ctx, id, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// WindowHandles returns the handles of all windows in the session.
func (s *Session) WindowHandles(ctx context.Context) ([]string, error) {
	id := command.GetWindowHandles
	if s.W3C() {
		id = command.W3CGetWindowHandles
	}
	v, err := s.value(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return asStrings(v)
}

func (s *Session) MaximizeWindow(ctx context.Context) error {
	if s.W3C() {
		_, err := s.Execute(ctx, command.W3CMaximizeWindow, nil)
		return err
	}
	_, err := s.Execute(ctx, command.MaximizeWindow, map[string]any{"windowHandle": currentWindow})
	return err
}

func (s *Session) MinimizeWindow(ctx context.Context) error {
	_, err := s.Execute(ctx, command.MinimizeWindow, nil)
	return err
}

func (s *Session) FullscreenWindow(ctx context.Context) error {
	_, err := s.Execute(ctx, command.FullscreenWindow, nil)
	return err
}

// WindowRectUpdate holds the fields to change in SetWindowRect. Nil fields
// are left as they are.
type WindowRectUpdate struct {
	X, Y          *int
	Width, Height *int
}

// SetWindowRect moves and/or resizes the current window and returns the
// resulting rect.
func (s *Session) SetWindowRect(ctx context.Context, u WindowRectUpdate) (Rect, error) {
	if u.X == nil && u.Y == nil && u.Width == nil && u.Height == nil {
		return Rect{}, fmt.Errorf("%w: x and y or width and height need values", ErrInvalidArgument)
	}
	params := map[string]any{"x": nil, "y": nil, "width": nil, "height": nil}
	for key, ptr := range map[string]*int{"x": u.X, "y": u.Y, "width": u.Width, "height": u.Height} {
		if ptr != nil {
			params[key] = *ptr
		}
	}
	v, err := s.value(ctx, command.SetWindowRect, params)
	if err != nil {
		return Rect{}, err
	}
	var r Rect
	if v == nil {
		return r, nil
	}
	if err := decodeValue(v, &r); err != nil {
		return Rect{}, err
	}
	return r, nil
}

// WindowRect returns the current window position and size.
func (s *Session) WindowRect(ctx context.Context) (Rect, error) {
	v, err := s.value(ctx, command.GetWindowRect, nil)
	if err != nil {
		return Rect{}, err
	}
	var r Rect
	if err := decodeValue(v, &r); err != nil {
		return Rect{}, err
	}
	return r, nil
}

// SetWindowSize resizes the current window.
func (s *Session) SetWindowSize(ctx context.Context, width, height int) error {
	if s.W3C() {
		_, err := s.SetWindowRect(ctx, WindowRectUpdate{Width: &width, Height: &height})
		return err
	}
	_, err := s.Execute(ctx, command.SetWindowSize, map[string]any{
		"width":        width,
		"height":       height,
		"windowHandle": currentWindow,
	})
	return err
}

// WindowSize returns the current window size.
func (s *Session) WindowSize(ctx context.Context) (Size, error) {
	if s.W3C() {
		r, err := s.WindowRect(ctx)
		return r.Size(), err
	}
	v, err := s.value(ctx, command.GetWindowSize, map[string]any{"windowHandle": currentWindow})
	if err != nil {
		return Size{}, err
	}
	var size Size
	if err := decodeValue(v, &size); err != nil {
		return Size{}, err
	}
	return size, nil
}

// SetWindowPosition moves the current window.
func (s *Session) SetWindowPosition(ctx context.Context, x, y int) error {
	if s.W3C() {
		_, err := s.SetWindowRect(ctx, WindowRectUpdate{X: &x, Y: &y})
		return err
	}
	_, err := s.Execute(ctx, command.SetWindowPosition, map[string]any{
		"x":            x,
		"y":            y,
		"windowHandle": currentWindow,
	})
	return err
}

// WindowPosition returns the current window position.
func (s *Session) WindowPosition(ctx context.Context) (Point, error) {
	if s.W3C() {
		r, err := s.WindowRect(ctx)
		return r.Point(), err
	}
	v, err := s.value(ctx, command.GetWindowPosition, map[string]any{"windowHandle": currentWindow})
	if err != nil {
		return Point{}, err
	}
	var r Rect
	if err := decodeValue(v, &r); err != nil {
		return Point{}, err
	}
	return r.Point(), nil
}

// Timeouts mirrors the W3C timeouts object.
type Timeouts struct {
	Implicit time.Duration
	PageLoad time.Duration
	Script   time.Duration
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// ImplicitlyWait sets how long element lookups poll before failing.
func (s *Session) ImplicitlyWait(ctx context.Context, d time.Duration) error {
	if s.W3C() {
		_, err := s.Execute(ctx, command.SetTimeouts, map[string]any{"implicit": millis(d)})
		return err
	}
	_, err := s.Execute(ctx, command.ImplicitWait, map[string]any{"ms": float64(millis(d))})
	return err
}

// SetScriptTimeout bounds ExecuteAsyncScript.
func (s *Session) SetScriptTimeout(ctx context.Context, d time.Duration) error {
	if s.W3C() {
		_, err := s.Execute(ctx, command.SetTimeouts, map[string]any{"script": millis(d)})
		return err
	}
	_, err := s.Execute(ctx, command.SetScriptTimeout, map[string]any{"ms": float64(millis(d))})
	return err
}

// SetPageLoadTimeout bounds navigation. Endpoints that reject the W3C form
// are retried with the legacy typed form.
func (s *Session) SetPageLoadTimeout(ctx context.Context, d time.Duration) error {
	_, err := s.Execute(ctx, command.SetTimeouts, map[string]any{"pageLoad": millis(d)})
	if err == nil {
		return nil
	}
	var derr *DriverError
	if !errors.As(err, &derr) {
		return err
	}
	_, err = s.Execute(ctx, command.SetTimeouts, map[string]any{"ms": float64(millis(d)), "type": "page load"})
	return err
}

// Timeouts returns the session timeouts. W3C only.
func (s *Session) Timeouts(ctx context.Context) (Timeouts, error) {
	v, err := s.value(ctx, command.GetTimeouts, nil)
	if err != nil {
		return Timeouts{}, err
	}
	var raw struct {
		Implicit float64 `json:"implicit"`
		PageLoad float64 `json:"pageLoad"`
		Script   float64 `json:"script"`
	}
	if err := decodeValue(v, &raw); err != nil {
		return Timeouts{}, err
	}
	return Timeouts{
		Implicit: time.Duration(raw.Implicit) * time.Millisecond,
		PageLoad: time.Duration(raw.PageLoad) * time.Millisecond,
		Script:   time.Duration(raw.Script) * time.Millisecond,
	}, nil
}
