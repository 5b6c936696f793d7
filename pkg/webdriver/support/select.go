// Package support holds helpers built on top of the core session API:
// <select> handling, polling waits and parsed page snapshots.
package support

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

var (
	ErrUnexpectedTag = errors.New("support: unexpected tag name")
	ErrNotMultiple   = errors.New("support: select does not allow multiple selections")
)

// Select wraps a <select> element.
type Select struct {
	el       *webdriver.Element
	multiple bool
}

// NewSelect checks that el is a <select> and reads its multiple attribute.
func NewSelect(ctx context.Context, el *webdriver.Element) (*Select, error) {
	tag, err := el.TagName(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tag, "select") {
		return nil, fmt.Errorf("%w: Select only works on <select> elements, not on <%s>", ErrUnexpectedTag, tag)
	}
	multi, ok, err := el.Attribute(ctx, "multiple")
	if err != nil {
		return nil, err
	}
	return &Select{el: el, multiple: ok && multi != "false"}, nil
}

// Element returns the wrapped element.
func (s *Select) Element() *webdriver.Element { return s.el }

// IsMultiple reports whether several options may be selected.
func (s *Select) IsMultiple() bool { return s.multiple }

// Options returns every <option> in the select.
func (s *Select) Options(ctx context.Context) ([]*webdriver.Element, error) {
	return s.el.FindElements(ctx, webdriver.ByTagName, "option")
}

// SelectedOptions returns the selected options.
func (s *Select) SelectedOptions(ctx context.Context) ([]*webdriver.Element, error) {
	opts, err := s.Options(ctx)
	if err != nil {
		return nil, err
	}
	var out []*webdriver.Element
	for _, opt := range opts {
		selected, err := opt.IsSelected(ctx)
		if err != nil {
			return nil, err
		}
		if selected {
			out = append(out, opt)
		}
	}
	return out, nil
}

// FirstSelectedOption returns the first selected option.
func (s *Select) FirstSelectedOption(ctx context.Context) (*webdriver.Element, error) {
	selected, err := s.SelectedOptions(ctx)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no options are selected", webdriver.ErrNoSuchElement)
	}
	return selected[0], nil
}

// SelectByValue selects options whose value attribute equals value. A
// single select stops after the first match.
func (s *Select) SelectByValue(ctx context.Context, value string) error {
	opts, err := s.el.FindElements(ctx, webdriver.ByCSSSelector, "option[value="+cssQuote(value)+"]")
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		return fmt.Errorf("%w: cannot locate option with value: %s", webdriver.ErrNoSuchElement, value)
	}
	for _, opt := range opts {
		if err := setSelected(ctx, opt, true); err != nil {
			return err
		}
		if !s.multiple {
			return nil
		}
	}
	return nil
}

// SelectByIndex selects the option whose index property equals index.
func (s *Select) SelectByIndex(ctx context.Context, index int) error {
	opts, err := s.Options(ctx)
	if err != nil {
		return err
	}
	want := strconv.Itoa(index)
	for _, opt := range opts {
		v, ok, err := opt.Attribute(ctx, "index")
		if err != nil {
			return err
		}
		if ok && v == want {
			return setSelected(ctx, opt, true)
		}
	}
	return fmt.Errorf("%w: could not locate element with index %d", webdriver.ErrNoSuchElement, index)
}

// SelectByVisibleText selects options whose trimmed text equals text.
func (s *Select) SelectByVisibleText(ctx context.Context, text string) error {
	opts, err := s.Options(ctx)
	if err != nil {
		return err
	}
	matched := false
	for _, opt := range opts {
		got, err := opt.Text(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(got) != strings.TrimSpace(text) {
			continue
		}
		if err := setSelected(ctx, opt, true); err != nil {
			return err
		}
		if !s.multiple {
			return nil
		}
		matched = true
	}
	if !matched {
		return fmt.Errorf("%w: could not locate element with visible text: %s", webdriver.ErrNoSuchElement, text)
	}
	return nil
}

// DeselectAll clears a multiple select.
func (s *Select) DeselectAll(ctx context.Context) error {
	if !s.multiple {
		return ErrNotMultiple
	}
	opts, err := s.Options(ctx)
	if err != nil {
		return err
	}
	for _, opt := range opts {
		if err := setSelected(ctx, opt, false); err != nil {
			return err
		}
	}
	return nil
}

// DeselectByValue deselects options with the given value.
func (s *Select) DeselectByValue(ctx context.Context, value string) error {
	if !s.multiple {
		return ErrNotMultiple
	}
	opts, err := s.el.FindElements(ctx, webdriver.ByCSSSelector, "option[value="+cssQuote(value)+"]")
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		return fmt.Errorf("%w: could not locate element with value: %s", webdriver.ErrNoSuchElement, value)
	}
	for _, opt := range opts {
		if err := setSelected(ctx, opt, false); err != nil {
			return err
		}
	}
	return nil
}

// setSelected clicks opt when its state differs from want.
func setSelected(ctx context.Context, opt *webdriver.Element, want bool) error {
	selected, err := opt.IsSelected(ctx)
	if err != nil {
		return err
	}
	if selected == want {
		return nil
	}
	return opt.Click(ctx)
}

func cssQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
