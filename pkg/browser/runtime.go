package browser

import (
	"context"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

//go:generate mockgen -package=browser -destination=mock_runtime_test.go github.com/odvcencio/wdrive/pkg/browser Runtime,BrowserSession

// Runtime creates browser sessions.
type Runtime interface {
	NewSession(ctx context.Context, cfg SessionConfig) (BrowserSession, error)
	Close() error
}

// BrowserSession is one live browser driven by a Runtime.
type BrowserSession interface {
	ID() string
	Navigate(ctx context.Context, url string) (*Observation, error)
	Observe(ctx context.Context, opts ObserveOptions) (*Observation, error)
	Act(ctx context.Context, action Action) (*ActionResult, error)
	// WebDriver exposes the underlying protocol session for commands the
	// port does not cover.
	WebDriver() *webdriver.Session
	Close(ctx context.Context) error
}
