package webdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// Cookie is a browser cookie. Expiry is seconds since the epoch, zero for
// session cookies.
type Cookie struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty" yaml:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty" yaml:"httpOnly,omitempty"`
	Expiry   int64  `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	SameSite string `json:"sameSite,omitempty" yaml:"sameSite,omitempty"`
}

func (c Cookie) params() map[string]any {
	m := map[string]any{"name": c.Name, "value": c.Value}
	if c.Path != "" {
		m["path"] = c.Path
	}
	if c.Domain != "" {
		m["domain"] = c.Domain
	}
	if c.Secure {
		m["secure"] = true
	}
	if c.HTTPOnly {
		m["httpOnly"] = true
	}
	if c.Expiry != 0 {
		m["expiry"] = c.Expiry
	}
	if c.SameSite != "" {
		m["sameSite"] = c.SameSite
	}
	return m
}

// Cookies returns every cookie visible to the current page.
func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	v, err := s.value(ctx, command.GetAllCookies, nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []Cookie{}, nil
	}
	var cookies []Cookie
	if err := decodeValue(v, &cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

// Cookie returns the named cookie, or nil without error when it does not
// exist. Legacy endpoints have no single-cookie lookup, so all cookies are
// scanned.
func (s *Session) Cookie(ctx context.Context, name string) (*Cookie, error) {
	if !s.W3C() {
		cookies, err := s.Cookies(ctx)
		if err != nil {
			return nil, err
		}
		for i := range cookies {
			if cookies[i].Name == name {
				return &cookies[i], nil
			}
		}
		return nil, nil
	}

	v, err := s.value(ctx, command.GetCookie, map[string]any{"name": name})
	if errors.Is(err, ErrNoSuchCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	var c Cookie
	if err := decodeValue(v, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// AddCookie sets a cookie for the current document's domain unless Domain
// says otherwise.
func (s *Session) AddCookie(ctx context.Context, c Cookie) error {
	if c.Name == "" {
		return fmt.Errorf("%w: cookie name is required", ErrInvalidArgument)
	}
	_, err := s.Execute(ctx, command.AddCookie, map[string]any{"cookie": c.params()})
	return err
}

func (s *Session) DeleteCookie(ctx context.Context, name string) error {
	_, err := s.Execute(ctx, command.DeleteCookie, map[string]any{"name": name})
	return err
}

func (s *Session) DeleteAllCookies(ctx context.Context) error {
	_, err := s.Execute(ctx, command.DeleteAllCookies, nil)
	return err
}
