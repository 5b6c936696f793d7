package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// DefaultMaxRedirects bounds how many 3xx responses a single command follows.
const DefaultMaxRedirects = 10

// Executor turns command identifiers into HTTP exchanges with one remote end
// and decodes the replies. It keeps no per-call state, so concurrent Execute
// calls are independent.
type Executor struct {
	baseURL      string
	transport    Transport
	catalog      *command.Catalog
	maxRedirects int
	logger       *slog.Logger
	observers    []Observer
	w3c          atomic.Bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithCatalog replaces the base command catalog.
func WithCatalog(c *command.Catalog) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithMaxRedirects sets the redirect ceiling. Values below zero are ignored.
func WithMaxRedirects(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 0 {
			e.maxRedirects = n
		}
	}
}

// WithExecutorLogger sets the logger used for request tracing.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an observer for every executed command.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// NewExecutor builds an executor that addresses the remote end at baseURL.
func NewExecutor(baseURL string, transport Transport, opts ...ExecutorOption) (*Executor, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidArgument)
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: remote url: %v", ErrInvalidArgument, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: remote url %q must be http or https", ErrInvalidArgument, baseURL)
	}
	e := &Executor{
		baseURL:      strings.TrimRight(u.String(), "/"),
		transport:    transport,
		catalog:      command.Base(),
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// BaseURL returns the remote end address without a trailing slash.
func (e *Executor) BaseURL() string { return e.baseURL }

// Catalog returns the command catalog in use.
func (e *Executor) Catalog() *command.Catalog { return e.catalog }

// SetW3C records the dialect negotiated by the session.
func (e *Executor) SetW3C(w3c bool) { e.w3c.Store(w3c) }

// W3C reports the dialect last recorded with SetW3C.
func (e *Executor) W3C() bool { return e.w3c.Load() }

// Close releases the transport.
func (e *Executor) Close() error {
	return e.transport.Close()
}

// Execute runs one command. Failures reported by the remote end come back
// as *DriverError; transport failures are wrapped with the command id.
func (e *Executor) Execute(ctx context.Context, id string, params map[string]any) (*Envelope, error) {
	resolved, err := e.catalog.Resolve(id, params)
	if err != nil {
		if errors.Is(err, command.ErrUnknown) {
			return nil, fmt.Errorf("%w: %w", ErrUnknownCommand, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	sessionID, _ := params["sessionId"].(string)

	for _, o := range e.observers {
		ctx = o.CommandStarted(ctx, id)
	}
	start := time.Now()
	env, redirects, err := e.roundTrip(ctx, resolved, sessionID)
	if err == nil {
		err = Classify(env)
	}

	ev := CommandEvent{
		Command:   id,
		Method:    resolved.Method,
		Redirects: redirects,
		Duration:  time.Since(start),
		Err:       err,
	}
	if env != nil {
		ev.HTTPStatus = env.HTTPStatus
	}
	for _, o := range e.observers {
		o.CommandFinished(ctx, ev)
	}
	e.logger.DebugContext(ctx, "webdriver command",
		slog.String("command", id),
		slog.String("method", resolved.Method),
		slog.String("path", resolved.Path),
		slog.Int("http_status", ev.HTTPStatus),
		slog.Int("redirects", redirects),
		slog.Duration("duration", ev.Duration),
		slog.Bool("w3c", e.W3C()),
		slog.Any("error", err),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Executor) roundTrip(ctx context.Context, resolved command.Resolved, sessionID string) (*Envelope, int, error) {
	req := &Request{
		Method: resolved.Method,
		URL:    e.baseURL + resolved.Path,
	}
	if resolved.Method == http.MethodPost || resolved.Method == http.MethodPut {
		body, err := json.Marshal(resolved.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode %s parameters: %v", ErrInvalidArgument, resolved.ID, err)
		}
		req.Body = body
	}

	redirects := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, redirects, fmt.Errorf("webdriver: %s: %w", resolved.ID, err)
		}
		resp, err := e.transport.Do(ctx, req)
		if err != nil {
			return nil, redirects, fmt.Errorf("webdriver: %s: %w", resolved.ID, err)
		}
		location := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || location == "" {
			return decodeEnvelope(resp, sessionID), redirects, nil
		}
		if redirects >= e.maxRedirects {
			return nil, redirects, fmt.Errorf("webdriver: %s: %w (%d)", resolved.ID, ErrTooManyRedirects, e.maxRedirects)
		}
		next, err := resolveLocation(req.URL, location)
		if err != nil {
			return nil, redirects, fmt.Errorf("webdriver: %s: %w: bad redirect location %q", resolved.ID, ErrProtocol, location)
		}
		redirects++
		req = &Request{Method: http.MethodGet, URL: next}
	}
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMultipleChoices,
		http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
