package webdriver

import (
	"context"
	"fmt"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// By is an element location strategy.
type By string

const (
	ByID              By = "id"
	ByXPath           By = "xpath"
	ByLinkText        By = "link text"
	ByPartialLinkText By = "partial link text"
	ByName            By = "name"
	ByTagName         By = "tag name"
	ByClassName       By = "class name"
	ByCSSSelector     By = "css selector"
)

// locator returns the strategy and value to send. W3C endpoints only know
// css, xpath and link text, so the other strategies become CSS.
func locator(w3c bool, by By, value string) map[string]any {
	if w3c {
		switch by {
		case ByID:
			by, value = ByCSSSelector, fmt.Sprintf("[id=%q]", value)
		case ByTagName:
			by = ByCSSSelector
		case ByClassName:
			by, value = ByCSSSelector, "."+value
		case ByName:
			by, value = ByCSSSelector, fmt.Sprintf("[name=%q]", value)
		}
	}
	return map[string]any{"using": string(by), "value": value}
}

func asElement(v any) (*Element, error) {
	el, ok := v.(*Element)
	if !ok {
		return nil, fmt.Errorf("%w: expected element reference, got %T", ErrProtocol, v)
	}
	return el, nil
}

func asElements(v any) ([]*Element, error) {
	if v == nil {
		return []*Element{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected element list, got %T", ErrProtocol, v)
	}
	out := make([]*Element, 0, len(items))
	for _, item := range items {
		el, err := asElement(item)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// FindElement returns the first element matching the locator.
func (s *Session) FindElement(ctx context.Context, by By, value string) (*Element, error) {
	v, err := s.value(ctx, command.FindElement, locator(s.W3C(), by, value))
	if err != nil {
		return nil, err
	}
	return asElement(v)
}

// FindElements returns all matching elements. A null reply is an empty list.
func (s *Session) FindElements(ctx context.Context, by By, value string) ([]*Element, error) {
	v, err := s.value(ctx, command.FindElements, locator(s.W3C(), by, value))
	if err != nil {
		return nil, err
	}
	return asElements(v)
}
