package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/support"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

// RemoteConfig configures a RemoteRuntime.
type RemoteConfig struct {
	// URL of the remote end, e.g. http://127.0.0.1:4444.
	URL string
	// Capabilities are merged under each session's own capabilities.
	Capabilities map[string]any
	// NewTransport builds the transport for one session. Each session owns
	// its transport and closes it on quit.
	NewTransport    func() webdriver.Transport
	ExecutorOptions []webdriver.ExecutorOption
	Logger          *slog.Logger
	Metrics         *Metrics
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.NewTransport == nil {
		c.NewTransport = func() webdriver.Transport { return transport.New() }
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks the configuration.
func (c RemoteConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("remote url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote url: unsupported scheme %q", u.Scheme)
	}
	return nil
}

// RemoteRuntime opens WebDriver sessions against a remote end.
type RemoteRuntime struct {
	cfg RemoteConfig

	mu     sync.Mutex
	closed bool
}

// NewRemoteRuntime creates a runtime for cfg.URL.
func NewRemoteRuntime(cfg RemoteConfig) (*RemoteRuntime, error) {
	merged := cfg.withDefaults()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &RemoteRuntime{cfg: merged}, nil
}

// NewSession performs the handshake and applies viewport, timeouts and the
// initial URL. A session that fails setup is quit before returning.
func (r *RemoteRuntime) NewSession(ctx context.Context, cfg SessionConfig) (BrowserSession, error) {
	if r == nil {
		return nil, ErrUnavailable
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(cfg.SessionID) == "" {
		return nil, errors.New("session_id is required")
	}

	ex, err := webdriver.NewExecutor(r.cfg.URL, r.cfg.NewTransport(), r.cfg.ExecutorOptions...)
	if err != nil {
		return nil, wrapError("new session", cfg.SessionID, err)
	}
	logger := r.cfg.Logger.With(slog.String("browser_session_id", cfg.SessionID))
	wd := webdriver.New(ex, webdriver.WithLogger(logger))

	caps := maps.Clone(r.cfg.Capabilities)
	if caps == nil {
		caps = map[string]any{}
	}
	maps.Copy(caps, cfg.Capabilities)
	if err := wd.Start(ctx, caps); err != nil {
		_ = wd.Quit(context.WithoutCancel(ctx))
		return nil, wrapError("new session", cfg.SessionID, err)
	}

	sess := &remoteSession{id: cfg.SessionID, wd: wd, metrics: r.cfg.Metrics}
	if err := sess.setup(ctx, cfg); err != nil {
		_ = wd.Quit(context.WithoutCancel(ctx))
		return nil, wrapError("new session", cfg.SessionID, err)
	}
	r.cfg.Metrics.RecordSessionCreated(cfg.SessionID)
	return sess, nil
}

// Close stops the runtime from opening new sessions. Open sessions are
// owned by their callers.
func (r *RemoteRuntime) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

type remoteSession struct {
	id      string
	wd      *webdriver.Session
	metrics *Metrics

	mu     sync.Mutex
	closed bool
}

func (s *remoteSession) setup(ctx context.Context, cfg SessionConfig) error {
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		if err := s.wd.SetWindowSize(ctx, cfg.Viewport.Width, cfg.Viewport.Height); err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
	}
	for _, t := range []struct {
		d   time.Duration
		set func(context.Context, time.Duration) error
	}{
		{cfg.Timeouts.Implicit, s.wd.ImplicitlyWait},
		{cfg.Timeouts.PageLoad, s.wd.SetPageLoadTimeout},
		{cfg.Timeouts.Script, s.wd.SetScriptTimeout},
	} {
		if t.d <= 0 {
			continue
		}
		if err := t.set(ctx, t.d); err != nil {
			return fmt.Errorf("set timeouts: %w", err)
		}
	}
	if cfg.InitialURL != "" {
		if err := s.wd.Get(ctx, cfg.InitialURL); err != nil {
			return fmt.Errorf("open %s: %w", cfg.InitialURL, err)
		}
	}
	return nil
}

func (s *remoteSession) ID() string { return s.id }

func (s *remoteSession) WebDriver() *webdriver.Session { return s.wd }

func (s *remoteSession) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *remoteSession) Navigate(ctx context.Context, rawURL string) (*Observation, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.wd.Get(ctx, rawURL); err != nil {
		return nil, wrapError("navigate", s.id, err)
	}
	s.metrics.RecordNavigate(s.id, rawURL, time.Since(start))
	return s.Observe(ctx, ObserveOptions{})
}

func (s *remoteSession) Observe(ctx context.Context, opts ObserveOptions) (*Observation, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	obs, err := s.observe(ctx, opts)
	if err != nil {
		return nil, wrapError("observe", s.id, err)
	}
	s.metrics.RecordObserve(s.id, time.Since(start))
	return obs, nil
}

func (s *remoteSession) observe(ctx context.Context, opts ObserveOptions) (*Observation, error) {
	obs := &Observation{Timestamp: time.Now()}
	var err error
	if obs.URL, err = s.wd.CurrentURL(ctx); err != nil {
		return nil, err
	}
	if obs.Title, err = s.wd.Title(ctx); err != nil {
		return nil, err
	}
	if opts.IncludeSource || opts.IncludeLinks {
		src, err := s.wd.PageSource(ctx)
		if err != nil {
			return nil, err
		}
		if opts.IncludeSource {
			obs.Source = src
		}
		if opts.IncludeLinks {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
			if err != nil {
				return nil, fmt.Errorf("parse page source: %w", err)
			}
			obs.Links = support.Links(doc)
		}
	}
	if opts.IncludeScreenshot {
		if obs.Screenshot, err = s.wd.ScreenshotPNG(ctx); err != nil {
			return nil, err
		}
	}
	return obs, nil
}

func (s *remoteSession) Act(ctx context.Context, action Action) (*ActionResult, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := s.act(ctx, action)
	s.metrics.RecordAction(s.id, action.Type, err == nil, time.Since(start))
	if err != nil {
		return nil, wrapError(string(action.Type), s.id, err)
	}
	return res, nil
}

func (s *remoteSession) act(ctx context.Context, action Action) (*ActionResult, error) {
	res := &ActionResult{}
	switch action.Type {
	case ActionBack:
		if err := s.wd.Back(ctx); err != nil {
			return nil, err
		}
	case ActionForward:
		if err := s.wd.Forward(ctx); err != nil {
			return nil, err
		}
	case ActionRefresh:
		if err := s.wd.Refresh(ctx); err != nil {
			return nil, err
		}
	case ActionScript:
		var args []any
		if action.Target != nil {
			el, err := s.target(ctx, action)
			if err != nil {
				return nil, err
			}
			args = append(args, el)
		}
		v, err := s.wd.ExecuteScript(ctx, action.Text, args...)
		if err != nil {
			return nil, err
		}
		res.Value = v
	case ActionClick, ActionTypeText, ActionClear, ActionSelect:
		el, err := s.target(ctx, action)
		if err != nil {
			return nil, err
		}
		if err := s.elementAction(ctx, el, action); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}

	obs, err := s.observe(ctx, ObserveOptions{})
	if err != nil {
		return nil, err
	}
	res.Observation = obs
	return res, nil
}

func (s *remoteSession) elementAction(ctx context.Context, el *webdriver.Element, action Action) error {
	switch action.Type {
	case ActionClick:
		return el.Click(ctx)
	case ActionTypeText:
		return el.SendKeys(ctx, action.Text)
	case ActionClear:
		return el.Clear(ctx)
	default:
		sel, err := support.NewSelect(ctx, el)
		if err != nil {
			return err
		}
		return sel.SelectByValue(ctx, action.Text)
	}
}

func (s *remoteSession) target(ctx context.Context, action Action) (*webdriver.Element, error) {
	if action.Target == nil {
		return nil, fmt.Errorf("%w: %s needs a target", webdriver.ErrInvalidArgument, action.Type)
	}
	if action.Wait <= 0 {
		return s.wd.FindElement(ctx, action.Target.By, action.Target.Value)
	}
	w := support.Wait{Timeout: action.Wait, Interval: 100 * time.Millisecond}
	return support.ElementLocated(ctx, w, s.wd, action.Target.By, action.Target.Value)
}

// Close quits the remote session. Calling Close again returns
// ErrSessionClosed.
func (s *remoteSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	err := s.wd.Quit(ctx)
	s.metrics.RecordSessionClosed(s.id)
	return wrapError("close", s.id, err)
}
