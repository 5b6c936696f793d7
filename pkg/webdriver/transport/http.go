// Package transport sends WebDriver requests over HTTP.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "wdrive (go)"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)

// DefaultTransport returns an http.Transport with a connection pool sized
// for one remote end.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// HTTP implements webdriver.Transport on net/http. Redirects are returned to
// the caller instead of being followed.
type HTTP struct {
	pool      *http.Transport
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	keepAlive bool
	header    http.Header
	logger    *slog.Logger
	logBodies bool
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithTimeout bounds each round trip. Zero disables the client timeout and
// leaves only the context deadline.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTP) { t.client.Timeout = d }
}

// WithRateLimit paces outgoing requests.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(t *HTTP) {
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *HTTP) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithKeepAlive toggles connection reuse.
func WithKeepAlive(enabled bool) Option {
	return func(t *HTTP) { t.keepAlive = enabled }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(t *HTTP) { t.header.Add(key, value) }
}

// WithLogger logs each exchange. When bodies is set the (truncated, header
// redacted) payloads are logged at debug level too.
func WithLogger(logger *slog.Logger, bodies bool) Option {
	return func(t *HTTP) {
		t.logger = logger
		t.logBodies = bodies
	}
}

// New returns an HTTP transport.
func New(opts ...Option) *HTTP {
	pool := DefaultTransport()
	t := &HTTP{
		pool:      pool,
		userAgent: defaultUserAgent,
		keepAlive: true,
		header:    make(http.Header),
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(t)
	}

	var rt http.RoundTripper = pool
	if t.logger != nil {
		rt = NewLoggingTransport(rt, t.logger, t.logBodies)
	}
	t.client.Transport = rt
	return t
}

// Do sends req and returns the raw response.
func (t *HTTP) Do(ctx context.Context, req *webdriver.Request) (*webdriver.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	target, user, err := splitUserinfo(req.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range t.header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		hreq.Header[k] = vs
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("Content-Type", "application/json;charset=UTF-8")
	hreq.Header.Set("User-Agent", t.userAgent)
	if hreq.Header.Get(RequestIDHeader) == "" {
		hreq.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if !t.keepAlive {
		hreq.Close = true
	}
	if user != nil {
		pass, _ := user.Password()
		hreq.SetBasicAuth(user.Username(), pass)
	}

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &webdriver.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Close drops idle pooled connections.
func (t *HTTP) Close() error {
	t.pool.CloseIdleConnections()
	return nil
}

// splitUserinfo removes credentials from raw so they travel as a basic auth
// header instead of in the request line.
func splitUserinfo(raw string) (string, *url.Userinfo, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %w", err)
	}
	user := u.User
	if user == nil {
		return raw, nil, nil
	}
	u.User = nil
	return u.String(), user, nil
}
