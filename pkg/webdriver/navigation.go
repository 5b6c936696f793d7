package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// Get loads url in the current browsing context.
func (s *Session) Get(ctx context.Context, url string) error {
	_, err := s.Execute(ctx, command.Get, map[string]any{"url": url})
	return err
}

// Title returns the document title, empty when the remote end sends null.
func (s *Session) Title(ctx context.Context) (string, error) {
	v, err := s.value(ctx, command.GetTitle, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	v, err := s.value(ctx, command.GetCurrentURL, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	v, err := s.value(ctx, command.GetPageSource, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (s *Session) Back(ctx context.Context) error {
	_, err := s.Execute(ctx, command.GoBack, nil)
	return err
}

func (s *Session) Forward(ctx context.Context) error {
	_, err := s.Execute(ctx, command.GoForward, nil)
	return err
}

func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.Execute(ctx, command.Refresh, nil)
	return err
}

// Close closes the current window. The session stays open; use Quit to
// end it.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.Execute(ctx, command.Close, nil)
	return err
}

// Status queries the remote end readiness. It works before Start.
func (s *Session) Status(ctx context.Context) (map[string]any, error) {
	v, err := s.value(ctx, command.Status, nil)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// PrintOptions configures PrintPage. Zero values are left to the browser.
type PrintOptions struct {
	Orientation string   `json:"orientation,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Background  bool     `json:"background,omitempty"`
	PageRanges  []string `json:"pageRanges,omitempty"`
	ShrinkToFit *bool    `json:"shrinkToFit,omitempty"`
}

// PrintPage renders the page to PDF and returns the document bytes.
func (s *Session) PrintPage(ctx context.Context, opts PrintOptions) ([]byte, error) {
	params := map[string]any{}
	if opts.Orientation != "" {
		params["orientation"] = opts.Orientation
	}
	if opts.Scale != 0 {
		params["scale"] = opts.Scale
	}
	if opts.Background {
		params["background"] = true
	}
	if len(opts.PageRanges) > 0 {
		params["pageRanges"] = opts.PageRanges
	}
	if opts.ShrinkToFit != nil {
		params["shrinkToFit"] = *opts.ShrinkToFit
	}
	v, err := s.value(ctx, command.PrintPage, params)
	if err != nil {
		return nil, err
	}
	text, err := asString(v)
	if err != nil {
		return nil, err
	}
	pdf, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: print output is not base64: %v", ErrProtocol, err)
	}
	return pdf, nil
}

// ExecuteScript runs script synchronously in the current frame. Handles in
// args and in the result are converted automatically.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	id := command.ExecuteScript
	if s.W3C() {
		id = command.W3CExecuteScript
	}
	return s.value(ctx, id, map[string]any{"script": script, "args": scriptArgs(args)})
}

// ExecuteAsyncScript runs script with a completion callback as its last
// argument.
func (s *Session) ExecuteAsyncScript(ctx context.Context, script string, args ...any) (any, error) {
	id := command.ExecuteAsyncScript
	if s.W3C() {
		id = command.W3CExecuteScriptAsync
	}
	return s.value(ctx, id, map[string]any{"script": script, "args": scriptArgs(args)})
}

func scriptArgs(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}

// Orientation returns LANDSCAPE or PORTRAIT on devices that support it.
func (s *Session) Orientation(ctx context.Context) (string, error) {
	v, err := s.value(ctx, command.GetScreenOrientation, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// SetOrientation accepts LANDSCAPE or PORTRAIT in any case.
func (s *Session) SetOrientation(ctx context.Context, orientation string) error {
	switch strings.ToUpper(orientation) {
	case "LANDSCAPE", "PORTRAIT":
	default:
		return fmt.Errorf("%w: orientation must be LANDSCAPE or PORTRAIT, got %q", ErrInvalidArgument, orientation)
	}
	_, err := s.Execute(ctx, command.SetScreenOrientation, map[string]any{"orientation": orientation})
	return err
}

// LogTypes lists the log buffers the remote end exposes.
func (s *Session) LogTypes(ctx context.Context) ([]string, error) {
	v, err := s.value(ctx, command.GetAvailableLogTypes, nil)
	if err != nil {
		return nil, err
	}
	return asStrings(v)
}

// LogEntry is one record from Log.
type LogEntry struct {
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
	Source    string  `json:"source,omitempty"`
}

// Log fetches and clears the named log buffer, e.g. "browser" or "driver".
func (s *Session) Log(ctx context.Context, logType string) ([]LogEntry, error) {
	v, err := s.value(ctx, command.GetLog, map[string]any{"type": logType})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []LogEntry{}, nil
	}
	var entries []LogEntry
	if err := decodeValue(v, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
