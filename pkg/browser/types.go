package browser

import (
	"time"

	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/support"
)

// Viewport defines the browser window size.
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Timeouts are applied right after the handshake. Zero values keep the
// remote defaults.
type Timeouts struct {
	Implicit time.Duration `json:"implicit,omitempty" yaml:"implicit"`
	PageLoad time.Duration `json:"page_load,omitempty" yaml:"page_load"`
	Script   time.Duration `json:"script,omitempty" yaml:"script"`
}

// SessionConfig configures a browser session.
type SessionConfig struct {
	SessionID    string         `json:"session_id,omitempty"`
	InitialURL   string         `json:"initial_url,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
	Viewport     Viewport       `json:"viewport"`
	Timeouts     Timeouts       `json:"timeouts"`
}

// DefaultSessionConfig returns the recommended session defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Capabilities: map[string]any{},
		Viewport: Viewport{
			Width:  1280,
			Height: 720,
		},
	}
}

// Observation is a snapshot of the current page.
type Observation struct {
	URL        string         `json:"url,omitempty"`
	Title      string         `json:"title,omitempty"`
	Source     string         `json:"source,omitempty"`
	Links      []support.Link `json:"links,omitempty"`
	Screenshot []byte         `json:"screenshot,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ObserveOptions tunes the observation payload.
type ObserveOptions struct {
	IncludeSource     bool `json:"include_source"`
	IncludeLinks      bool `json:"include_links"`
	IncludeScreenshot bool `json:"include_screenshot"`
}

// ActionType represents the supported browser actions.
type ActionType string

const (
	ActionClick    ActionType = "click"
	ActionTypeText ActionType = "type"
	ActionClear    ActionType = "clear"
	ActionSelect   ActionType = "select"
	ActionBack     ActionType = "back"
	ActionForward  ActionType = "forward"
	ActionRefresh  ActionType = "refresh"
	ActionScript   ActionType = "script"
)

// Target locates the element an action applies to.
type Target struct {
	By    webdriver.By `json:"by"`
	Value string       `json:"value"`
}

// Action is a request for a browser action. Text carries the keys for
// ActionTypeText, the option value for ActionSelect and the source for
// ActionScript.
type Action struct {
	Type   ActionType `json:"type"`
	Target *Target    `json:"target,omitempty"`
	Text   string     `json:"text,omitempty"`
	// Wait bounds how long the target may take to appear. Zero looks once.
	Wait time.Duration `json:"wait,omitempty"`
}

// ActionResult returns the page state after an action.
type ActionResult struct {
	Observation *Observation `json:"observation,omitempty"`
	// Value holds the result of ActionScript.
	Value any `json:"value,omitempty"`
}
