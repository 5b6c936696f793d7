package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/odvcencio/wdrive/pkg/config"
	"github.com/odvcencio/wdrive/pkg/observability"
	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/chrome"
	"github.com/odvcencio/wdrive/pkg/webdriver/service"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

// app holds what one CLI invocation shares across its sessions.
type app struct {
	cfg     *config.Config
	logger  *observability.Logger
	metrics *observability.Metrics
	tracer  *observability.TracerProvider
	server  *http.Server
}

func newApp(cfg *config.Config) (*app, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, withExitCode(err, exitUsage)
	}
	a := &app{
		cfg:    cfg,
		logger: observability.NewLoggerTo(stderr, "cli", level, cfg.Logging.Format != "json"),
	}

	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetrics()
		if err := a.serveMetrics(cfg.Metrics.Addr); err != nil {
			return nil, err
		}
	}
	if cfg.Tracing.Enabled {
		tp, err := observability.NewTracerProvider(cfg.Tracing.ServiceName, version, stderr)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.tracer = tp
	}
	return a, nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", a.metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	a.server = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", slog.Any("error", err))
		}
	}()
	a.logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return nil
}

// Close stops the metrics server and flushes traces.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (a *app) transportOptions() []transport.Option {
	rc := a.cfg.Remote
	opts := []transport.Option{
		transport.WithTimeout(rc.Timeout),
		transport.WithKeepAlive(rc.KeepAlive),
	}
	if rc.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(rc.UserAgent))
	}
	if rc.RateLimit > 0 {
		opts = append(opts, transport.WithRateLimit(rate.Limit(rc.RateLimit), rc.RateBurst))
	}
	if rc.LogRequests {
		opts = append(opts, transport.WithLogger(a.logger.Logger, rc.LogBodies))
	}
	return opts
}

func (a *app) executorOptions() []webdriver.ExecutorOption {
	opts := []webdriver.ExecutorOption{webdriver.WithMaxRedirects(a.cfg.Remote.MaxRedirects)}
	if a.metrics != nil {
		opts = append(opts, webdriver.WithObserver(a.metrics))
	}
	if a.tracer != nil {
		opts = append(opts, webdriver.WithObserver(observability.NewTracing(observability.Tracer())))
	}
	return opts
}

func (a *app) browserOptions() chrome.Options {
	sc := a.cfg.Session
	opts := chrome.Options{
		BrowserName:  browserName(sc.Browser),
		Capabilities: sc.Capabilities,
	}
	opts.AddArgument(sc.BrowserArgs...)
	if sc.Headless && isChromium(sc.Browser) {
		opts.Headless()
	}
	return opts
}

func isChromium(browser string) bool {
	switch strings.ToLower(browser) {
	case "", "chrome", "edge":
		return true
	}
	return false
}

// browserName maps config names to capability browser names.
func browserName(browser string) string {
	switch b := strings.ToLower(browser); b {
	case "edge":
		return "MicrosoftEdge"
	case "":
		return "chrome"
	default:
		return b
	}
}

// openSession starts (or connects to) the driver, opens a session and
// applies the configured window size and timeouts.
func (a *app) openSession(ctx context.Context) (*webdriver.Session, error) {
	dc := a.cfg.Driver
	drv, err := chrome.New(ctx, chrome.Config{
		RemoteURL: a.cfg.Remote.URL,
		Service: service.Config{
			Path:         dc.Path,
			Host:         dc.Host,
			Port:         dc.Port,
			Args:         dc.Args,
			LogPath:      dc.LogPath,
			StartTimeout: dc.StartTimeout,
		},
		Options:   a.browserOptions(),
		Logger:    a.logger.Logger,
		Transport: a.transportOptions(),
		Executor:  a.executorOptions(),
	})
	if err != nil {
		return nil, err
	}
	s := drv.Session
	a.logger.SessionStarted(s.ID(), s.W3C(), a.cfg.Session.Browser)
	if a.metrics != nil {
		a.metrics.TrackSession(s)
	}

	if err := a.setup(ctx, s); err != nil {
		_ = s.Quit(context.WithoutCancel(ctx))
		return nil, err
	}
	return s, nil
}

func (a *app) setup(ctx context.Context, s *webdriver.Session) error {
	sc := a.cfg.Session
	if sc.Width > 0 && sc.Height > 0 {
		if err := s.SetWindowSize(ctx, sc.Width, sc.Height); err != nil {
			return fmt.Errorf("set window size: %w", err)
		}
	}
	if sc.ImplicitWait > 0 {
		if err := s.ImplicitlyWait(ctx, sc.ImplicitWait); err != nil {
			return fmt.Errorf("set implicit wait: %w", err)
		}
	}
	if sc.PageLoadTimeout > 0 {
		if err := s.SetPageLoadTimeout(ctx, sc.PageLoadTimeout); err != nil {
			return fmt.Errorf("set page load timeout: %w", err)
		}
	}
	if sc.ScriptTimeout > 0 {
		if err := s.SetScriptTimeout(ctx, sc.ScriptTimeout); err != nil {
			return fmt.Errorf("set script timeout: %w", err)
		}
	}
	return nil
}

// visit opens a session, loads url and hands the session to fn. The
// session is always quit afterwards.
func (a *app) visit(ctx context.Context, url string, fn func(context.Context, *webdriver.Session) (string, error)) (string, error) {
	s, err := a.openSession(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if qerr := s.Quit(context.WithoutCancel(ctx)); qerr != nil {
			a.logger.Warn("quit failed", slog.String("session_id", s.ID()), slog.Any("error", qerr))
		}
	}()

	if err := s.Get(ctx, url); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}
	return fn(ctx, s)
}

// visitAll runs visit for every url with at most parallel sessions open.
// Results keep the input order; failures are joined.
func (a *app) visitAll(ctx context.Context, urls []string, parallel int, fn func(context.Context, int, *webdriver.Session) (string, error)) ([]string, error) {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]string, len(urls))
	errs := make([]error, len(urls))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, u := range urls {
		g.Go(func() error {
			out, err := a.visit(ctx, u, func(ctx context.Context, s *webdriver.Session) (string, error) {
				return fn(ctx, i, s)
			})
			if err != nil {
				a.logger.CommandFailed("visit", err)
				errs[i] = fmt.Errorf("%s: %w", u, err)
				return nil
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}
