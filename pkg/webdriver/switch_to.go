package webdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// SwitchTo changes the browsing context commands are sent to.
type SwitchTo struct {
	s *Session
}

// SwitchTo returns the context switcher for s.
func (s *Session) SwitchTo() SwitchTo {
	return SwitchTo{s: s}
}

// ActiveElement returns the focused element, or BODY when nothing has focus.
func (t SwitchTo) ActiveElement(ctx context.Context) (*Element, error) {
	id := command.GetActiveElement
	if t.s.W3C() {
		id = command.W3CGetActiveElement
	}
	v, err := t.s.value(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return asElement(v)
}

// Alert returns the open alert, failing with ErrNoSuchAlert when none is
// showing.
func (t SwitchTo) Alert(ctx context.Context) (*Alert, error) {
	a := &Alert{s: t.s}
	if _, err := a.Text(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// DefaultContent switches to the top-level document.
func (t SwitchTo) DefaultContent(ctx context.Context) error {
	_, err := t.s.Execute(ctx, command.SwitchToFrame, map[string]any{"id": nil})
	return err
}

// Frame switches to a frame by index (int), by name or id (string), or by
// element (*Element). On W3C endpoints a string is resolved to an element
// first, trying id then name.
func (t SwitchTo) Frame(ctx context.Context, ref any) error {
	switch r := ref.(type) {
	case string:
		if t.s.W3C() {
			el, err := t.s.FindElement(ctx, ByID, r)
			if errors.Is(err, ErrNoSuchElement) {
				el, err = t.s.FindElement(ctx, ByName, r)
			}
			if errors.Is(err, ErrNoSuchElement) {
				return fmt.Errorf("%w: %s", ErrNoSuchFrame, r)
			}
			if err != nil {
				return err
			}
			ref = el
		}
	case int, *Element:
	default:
		return fmt.Errorf("%w: frame reference must be int, string or element, got %T", ErrInvalidArgument, ref)
	}
	_, err := t.s.Execute(ctx, command.SwitchToFrame, map[string]any{"id": ref})
	return err
}

// ParentFrame switches to the parent of the current frame.
func (t SwitchTo) ParentFrame(ctx context.Context) error {
	_, err := t.s.Execute(ctx, command.SwitchToParentFrame, nil)
	return err
}

// Window switches to a window by handle or, on W3C endpoints, by
// window.name when no handle matches.
func (t SwitchTo) Window(ctx context.Context, nameOrHandle string) error {
	if !t.s.W3C() {
		_, err := t.s.Execute(ctx, command.SwitchToWindow, map[string]any{"name": nameOrHandle})
		return err
	}
	err := t.sendHandle(ctx, nameOrHandle)
	if !errors.Is(err, ErrNoSuchWindow) {
		return err
	}
	original, herr := t.s.WindowHandle(ctx)
	if herr != nil {
		return herr
	}
	handles, herr := t.s.WindowHandles(ctx)
	if herr != nil {
		return herr
	}
	found, serr := t.findWindowByName(ctx, handles, nameOrHandle)
	if found {
		return nil
	}
	if rerr := t.sendHandle(context.WithoutCancel(ctx), original); rerr != nil {
		return errors.Join(serr, fmt.Errorf("restore window %s: %w", original, rerr))
	}
	if serr != nil {
		return serr
	}
	return err
}

// findWindowByName leaves the browser on the matching window. On a miss or
// error the current window is wherever the search stopped.
func (t SwitchTo) findWindowByName(ctx context.Context, handles []string, name string) (bool, error) {
	for _, h := range handles {
		if err := t.sendHandle(ctx, h); err != nil {
			return false, err
		}
		got, err := t.s.ExecuteScript(ctx, windowNameScript)
		if err != nil {
			return false, err
		}
		if got == name {
			return true, nil
		}
	}
	return false, nil
}

func (t SwitchTo) sendHandle(ctx context.Context, handle string) error {
	_, err := t.s.Execute(ctx, command.SwitchToWindow, map[string]any{"handle": handle})
	return err
}

// NewWindow opens a tab or window, switches to it and returns its handle.
// kind is "tab" or "window".
func (t SwitchTo) NewWindow(ctx context.Context, kind string) (string, error) {
	v, err := t.s.value(ctx, command.NewWindow, map[string]any{"type": kind})
	if err != nil {
		return "", err
	}
	var created struct {
		Handle string `json:"handle"`
	}
	if err := decodeValue(v, &created); err != nil {
		return "", err
	}
	if err := t.sendHandle(ctx, created.Handle); err != nil {
		return "", err
	}
	return created.Handle, nil
}
