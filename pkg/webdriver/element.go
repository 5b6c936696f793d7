package webdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"weak"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// Element is a handle to a remote DOM element. It holds its session weakly;
// once the session has quit or been collected every call fails with
// ErrInvalidHandle.
type Element struct {
	id      string
	session weak.Pointer[Session]
}

func (s *Session) newElement(id string) *Element {
	return &Element{id: id, session: weak.Make(s)}
}

// ElementFromID binds a known element reference to s.
func (s *Session) ElementFromID(id string) *Element {
	return s.newElement(id)
}

// ID returns the remote reference id.
func (e *Element) ID() string { return e.id }

// WireRef returns the JSON form sent to the remote end.
func (e *Element) WireRef() map[string]any {
	return map[string]any{ElementKey: e.id, LegacyElementKey: e.id}
}

// Equal reports whether both handles address the same remote element.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id == other.id && e.session == other.session
}

func (e *Element) String() string {
	return fmt.Sprintf("element(%s)", e.id)
}

// Session returns the owning session.
func (e *Element) Session() (*Session, error) {
	return ownerSession(e.session)
}

func ownerSession(p weak.Pointer[Session]) (*Session, error) {
	s := p.Value()
	if s == nil || s.State() == StateClosed {
		return nil, ErrInvalidHandle
	}
	return s, nil
}

func (e *Element) execute(ctx context.Context, id string, params map[string]any) (any, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	p := map[string]any{"id": e.id}
	for k, v := range params {
		p[k] = v
	}
	return s.value(ctx, id, p)
}

// TagName returns the element's tagName.
func (e *Element) TagName(ctx context.Context) (string, error) {
	v, err := e.execute(ctx, command.GetElementTagName, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// Text returns the rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	v, err := e.execute(ctx, command.GetElementText, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (e *Element) Click(ctx context.Context) error {
	_, err := e.execute(ctx, command.ClickElement, nil)
	return err
}

func (e *Element) Clear(ctx context.Context) error {
	_, err := e.execute(ctx, command.ClearElement, nil)
	return err
}

// Submit submits the form containing the element. W3C endpoints have no
// submit command, so the enclosing form is located and submitted by script.
func (e *Element) Submit(ctx context.Context) error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	if !s.W3C() {
		_, err := e.execute(ctx, command.SubmitElement, nil)
		return err
	}
	form, err := e.FindElement(ctx, ByXPath, "./ancestor-or-self::form")
	if err != nil {
		return err
	}
	_, err = s.ExecuteScript(ctx, submitScript, form)
	return err
}

// Property returns a DOM property. Endpoints without the property command
// are answered by script.
func (e *Element) Property(ctx context.Context, name string) (any, error) {
	v, err := e.execute(ctx, command.GetElementProperty, map[string]any{"name": name})
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrUnknownCommand) && !errors.Is(err, ErrUnsupportedOperation) {
		return nil, err
	}
	s, serr := e.Session()
	if serr != nil {
		return nil, serr
	}
	return s.ExecuteScript(ctx, propertyFallbackScript, e, name)
}

// Attribute returns the property or attribute called name. ok is false when
// neither exists.
func (e *Element) Attribute(ctx context.Context, name string) (value string, ok bool, err error) {
	s, err := e.Session()
	if err != nil {
		return "", false, err
	}
	var v any
	if s.W3C() {
		v, err = s.ExecuteScript(ctx, getAttributeScript, e, name)
	} else {
		v, err = e.execute(ctx, command.GetElementAttribute, map[string]any{"name": name})
	}
	if err != nil || v == nil {
		return "", false, err
	}
	value = fmt.Sprint(v)
	if !s.W3C() && name != "value" {
		if lower := strings.ToLower(value); lower == "true" || lower == "false" {
			value = lower
		}
	}
	return value, true, nil
}

// DOMAttribute returns the attribute exactly as written in markup.
func (e *Element) DOMAttribute(ctx context.Context, name string) (value string, ok bool, err error) {
	v, err := e.execute(ctx, command.GetElementAttribute, map[string]any{"name": name})
	if err != nil || v == nil {
		return "", false, err
	}
	return fmt.Sprint(v), true, nil
}

// CSSValue returns the computed value of a CSS property.
func (e *Element) CSSValue(ctx context.Context, property string) (string, error) {
	v, err := e.execute(ctx, command.GetElementValueOfCSSProperty, map[string]any{"propertyName": property})
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	v, err := e.execute(ctx, command.IsElementSelected, nil)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	v, err := e.execute(ctx, command.IsElementEnabled, nil)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// IsDisplayed reports whether the element is visible to a user.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	s, err := e.Session()
	if err != nil {
		return false, err
	}
	var v any
	if s.W3C() {
		v, err = s.ExecuteScript(ctx, isDisplayedScript, e)
	} else {
		v, err = e.execute(ctx, command.IsElementDisplayed, nil)
	}
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// Rect returns the element position and size.
func (e *Element) Rect(ctx context.Context) (Rect, error) {
	s, err := e.Session()
	if err != nil {
		return Rect{}, err
	}
	if s.W3C() {
		v, err := e.execute(ctx, command.GetElementRect, nil)
		if err != nil {
			return Rect{}, err
		}
		var r Rect
		if err := decodeValue(v, &r); err != nil {
			return Rect{}, err
		}
		return r, nil
	}
	size, err := e.Size(ctx)
	if err != nil {
		return Rect{}, err
	}
	loc, err := e.Location(ctx)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: float64(loc.X), Y: float64(loc.Y), Width: size.Width, Height: size.Height}, nil
}

// Location returns the rounded top-left corner in the page.
func (e *Element) Location(ctx context.Context) (Point, error) {
	s, err := e.Session()
	if err != nil {
		return Point{}, err
	}
	id := command.GetElementLocation
	if s.W3C() {
		id = command.GetElementRect
	}
	v, err := e.execute(ctx, id, nil)
	if err != nil {
		return Point{}, err
	}
	var r Rect
	if err := decodeValue(v, &r); err != nil {
		return Point{}, err
	}
	return r.Point(), nil
}

// LocationInView scrolls the element into view and returns its position.
func (e *Element) LocationInView(ctx context.Context) (Point, error) {
	s, err := e.Session()
	if err != nil {
		return Point{}, err
	}
	var v any
	if s.W3C() {
		v, err = s.ExecuteScript(ctx, scrollIntoViewScript, e)
	} else {
		v, err = e.execute(ctx, command.GetElementLocationInView, nil)
	}
	if err != nil {
		return Point{}, err
	}
	var r Rect
	if err := decodeValue(v, &r); err != nil {
		return Point{}, err
	}
	return r.Point(), nil
}

func (e *Element) Size(ctx context.Context) (Size, error) {
	s, err := e.Session()
	if err != nil {
		return Size{}, err
	}
	id := command.GetElementSize
	if s.W3C() {
		id = command.GetElementRect
	}
	v, err := e.execute(ctx, id, nil)
	if err != nil {
		return Size{}, err
	}
	var size Size
	if err := decodeValue(v, &size); err != nil {
		return Size{}, err
	}
	return size, nil
}

// AccessibleName returns the computed accessible label.
func (e *Element) AccessibleName(ctx context.Context) (string, error) {
	v, err := e.execute(ctx, command.GetElementAriaLabel, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// AriaRole returns the computed ARIA role.
func (e *Element) AriaRole(ctx context.Context) (string, error) {
	v, err := e.execute(ctx, command.GetElementAriaRole, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// FindElement searches below this element.
func (e *Element) FindElement(ctx context.Context, by By, value string) (*Element, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	v, err := e.execute(ctx, command.FindChildElement, locator(s.W3C(), by, value))
	if err != nil {
		return nil, err
	}
	return asElement(v)
}

// FindElements searches below this element.
func (e *Element) FindElements(ctx context.Context, by By, value string) ([]*Element, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	v, err := e.execute(ctx, command.FindChildElements, locator(s.W3C(), by, value))
	if err != nil {
		return nil, err
	}
	return asElements(v)
}

// ShadowRoot returns the element's open shadow root.
func (e *Element) ShadowRoot(ctx context.Context) (*ShadowRoot, error) {
	v, err := e.execute(ctx, command.GetShadowRoot, nil)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*ShadowRoot)
	if !ok {
		return nil, fmt.Errorf("%w: expected shadow root reference, got %T", ErrProtocol, v)
	}
	return root, nil
}

// ScreenshotBase64 captures the element as base64 PNG text.
func (e *Element) ScreenshotBase64(ctx context.Context) (string, error) {
	v, err := e.execute(ctx, command.ElementScreenshot, nil)
	if err != nil {
		return "", err
	}
	return screenshotText(v)
}

// ScreenshotPNG captures the element as PNG bytes.
func (e *Element) ScreenshotPNG(ctx context.Context) ([]byte, error) {
	v, err := e.execute(ctx, command.ElementScreenshot, nil)
	if err != nil {
		return nil, err
	}
	return screenshotBytes(v)
}

// SaveScreenshot writes the element capture to a .png file.
func (e *Element) SaveScreenshot(ctx context.Context, path string) error {
	png, err := e.ScreenshotPNG(ctx)
	if err != nil {
		return err
	}
	return writePNG(path, png)
}
