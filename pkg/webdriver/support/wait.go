package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

// Wait polls a condition until it holds or the timeout passes. Not-found
// errors are treated as "not yet"; other errors end the wait unless listed
// in Ignore.
type Wait struct {
	Timeout  time.Duration
	Interval time.Duration
	Ignore   []error
}

func (w Wait) withDefaults() Wait {
	if w.Timeout <= 0 {
		w.Timeout = DefaultTimeout
	}
	if w.Interval <= 0 {
		w.Interval = DefaultInterval
	}
	return w
}

func (w Wait) ignored(err error) bool {
	if webdriver.IsNotFound(err) || errors.Is(err, webdriver.ErrStaleElement) {
		return true
	}
	for _, target := range w.Ignore {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Until polls cond until it returns true.
func (w Wait) Until(ctx context.Context, cond func(ctx context.Context) (bool, error)) error {
	_, err := Poll(ctx, w, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := cond(ctx)
		return struct{}{}, ok, err
	})
	return err
}

// Poll calls fn until it reports done and returns the value it produced.
// On timeout the error wraps webdriver.ErrTimeout and the last ignored error.
func Poll[T any](ctx context.Context, w Wait, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	w = w.withDefaults()
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var zero T
	var last error
	for {
		v, done, err := fn(ctx)
		switch {
		case err != nil && !w.ignored(err) && ctx.Err() == nil:
			return zero, err
		case err != nil:
			last = err
		case done:
			return v, nil
		}

		select {
		case <-ctx.Done():
			if perr := parent.Err(); perr != nil {
				return zero, perr
			}
			if last != nil {
				return zero, fmt.Errorf("%w: condition not met after %s: %w", webdriver.ErrTimeout, w.Timeout, last)
			}
			return zero, fmt.Errorf("%w: condition not met after %s", webdriver.ErrTimeout, w.Timeout)
		case <-ticker.C:
		}
	}
}

// TitleIs waits for an exact title.
func TitleIs(s *webdriver.Session, title string) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		got, err := s.Title(ctx)
		return got == title, err
	}
}

// TitleContains waits for a title containing part.
func TitleContains(s *webdriver.Session, part string) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		got, err := s.Title(ctx)
		return strings.Contains(got, part), err
	}
}

// URLContains waits for the current URL to contain part.
func URLContains(s *webdriver.Session, part string) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		got, err := s.CurrentURL(ctx)
		return strings.Contains(got, part), err
	}
}

// ElementLocated waits for an element to exist and returns it.
func ElementLocated(ctx context.Context, w Wait, s *webdriver.Session, by webdriver.By, value string) (*webdriver.Element, error) {
	return Poll(ctx, w, func(ctx context.Context) (*webdriver.Element, bool, error) {
		el, err := s.FindElement(ctx, by, value)
		return el, err == nil, err
	})
}

// ElementVisible waits for an element to exist and be displayed.
func ElementVisible(ctx context.Context, w Wait, s *webdriver.Session, by webdriver.By, value string) (*webdriver.Element, error) {
	return Poll(ctx, w, func(ctx context.Context) (*webdriver.Element, bool, error) {
		el, err := s.FindElement(ctx, by, value)
		if err != nil {
			return nil, false, err
		}
		shown, err := el.IsDisplayed(ctx)
		return el, shown, err
	})
}
