package webdriver

import (
	"context"
	"fmt"
	"weak"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// ShadowRoot is a handle to an open shadow root.
type ShadowRoot struct {
	id      string
	session weak.Pointer[Session]
}

func (s *Session) newShadowRoot(id string) *ShadowRoot {
	return &ShadowRoot{id: id, session: weak.Make(s)}
}

func (r *ShadowRoot) ID() string { return r.id }

func (r *ShadowRoot) WireRef() map[string]any {
	return map[string]any{ShadowRootKey: r.id}
}

func (r *ShadowRoot) String() string {
	return fmt.Sprintf("shadow-root(%s)", r.id)
}

// Session returns the owning session.
func (r *ShadowRoot) Session() (*Session, error) {
	return ownerSession(r.session)
}

// FindElement searches inside the shadow tree. Only CSS-compatible
// strategies are meaningful here.
func (r *ShadowRoot) FindElement(ctx context.Context, by By, value string) (*Element, error) {
	s, err := r.Session()
	if err != nil {
		return nil, err
	}
	params := locator(true, by, value)
	params["shadowId"] = r.id
	v, err := s.value(ctx, command.FindElementFromShadowRoot, params)
	if err != nil {
		return nil, err
	}
	return asElement(v)
}

// FindElements searches inside the shadow tree.
func (r *ShadowRoot) FindElements(ctx context.Context, by By, value string) ([]*Element, error) {
	s, err := r.Session()
	if err != nil {
		return nil, err
	}
	params := locator(true, by, value)
	params["shadowId"] = r.id
	v, err := s.value(ctx, command.FindElementsFromShadow, params)
	if err != nil {
		return nil, err
	}
	return asElements(v)
}
