package webdriver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// State is a session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateEstablishing
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateEstablishing:
		return "establishing"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// QuitHook runs after the remote session has been asked to quit.
type QuitHook func(ctx context.Context) error

// Session is one remote browser session. All methods are safe for
// concurrent use once Start has returned.
type Session struct {
	executor *Executor
	logger   *slog.Logger

	mu    sync.RWMutex
	state State
	id    string
	w3c   bool
	caps  map[string]any
	hooks []QuitHook

	fileDetector FileDetector
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithQuitHook registers a hook run by Quit. See OnQuit.
func WithQuitHook(hook QuitHook) Option {
	return func(s *Session) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithFileDetector enables uploading local files passed to SendKeys.
func WithFileDetector(d FileDetector) Option {
	return func(s *Session) {
		s.fileDetector = d
	}
}

// New returns an unstarted session that owns executor.
func New(executor *Executor, opts ...Option) *Session {
	s := &Session{
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartOption configures the handshake.
type StartOption func(*startConfig)

type startConfig struct {
	sessionID string
	w3c       bool
	profile   string
}

// WithSessionID attaches to an existing remote session instead of creating
// one. No request is sent.
func WithSessionID(id string, w3c bool) StartOption {
	return func(c *startConfig) {
		c.sessionID = id
		c.w3c = w3c
	}
}

// WithProfile merges an encoded browser profile into the capabilities.
func WithProfile(encoded string) StartOption {
	return func(c *startConfig) {
		c.profile = encoded
	}
}

// Start runs the session handshake. caps must be a map[string]any,
// Capabilities or a CapabilitiesProvider.
func (s *Session) Start(ctx context.Context, caps any, opts ...StartOption) error {
	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case StateEstablishing, StateActive:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if cfg.sessionID != "" {
		s.id = cfg.sessionID
		s.w3c = cfg.w3c
		s.state = StateActive
		s.mu.Unlock()
		s.executor.SetW3C(cfg.w3c)
		s.logger.Info("attached to webdriver session", slog.String("session_id", cfg.sessionID), slog.Bool("w3c", cfg.w3c))
		return nil
	}

	desired, err := normalizeCapabilities(caps)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateEstablishing
	s.mu.Unlock()

	if cfg.profile != "" {
		mergeProfile(desired, cfg.profile)
	}
	params := map[string]any{
		"capabilities":        W3CCapabilities(desired),
		"desiredCapabilities": desired,
	}

	env, err := s.executor.Execute(ctx, command.NewSession, params)
	var id string
	var w3c bool
	var negotiated map[string]any
	if err == nil {
		id, w3c, negotiated, err = parseNewSession(env)
	}
	if err != nil {
		s.mu.Lock()
		if s.state == StateEstablishing {
			s.state = StateUninitialized
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.state != StateEstablishing {
		s.mu.Unlock()
		// Quit raced the handshake; do not leak the remote session.
		_, _ = s.executor.Execute(context.WithoutCancel(ctx), command.Quit, map[string]any{"sessionId": id})
		return ErrSessionClosed
	}
	s.id = id
	s.w3c = w3c
	s.caps = negotiated
	s.state = StateActive
	s.mu.Unlock()

	s.executor.SetW3C(w3c)
	s.logger.Info("webdriver session started", slog.String("session_id", id), slog.Bool("w3c", w3c))
	return nil
}

func parseNewSession(env *Envelope) (string, bool, map[string]any, error) {
	resp := env.Raw
	if _, ok := resp["sessionId"]; !ok {
		inner, ok := env.Value.(map[string]any)
		if !ok {
			return "", false, nil, fmt.Errorf("%w: %w: new session response has no session id", ErrSessionNotCreated, ErrProtocol)
		}
		resp = inner
	}
	id, _ := resp["sessionId"].(string)
	if id == "" {
		return "", false, nil, fmt.Errorf("%w: %w: new session response has no session id", ErrSessionNotCreated, ErrProtocol)
	}
	caps, _ := resp["value"].(map[string]any)
	if caps == nil {
		caps, _ = resp["capabilities"].(map[string]any)
	}
	w3c := resp["status"] == nil
	return id, w3c, caps, nil
}

// ID returns the remote session id, empty before Start.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// W3C reports whether the remote end speaks the W3C dialect.
func (s *Session) W3C() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w3c
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Capabilities returns a copy of the capabilities negotiated at Start.
func (s *Session) Capabilities() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.caps)
}

// Executor returns the command executor owned by the session.
func (s *Session) Executor() *Executor {
	return s.executor
}

// OnQuit registers a hook that Quit runs after the remote quit attempt,
// whether or not that attempt succeeded. On a session that has already quit
// the hook runs immediately and its error is returned.
func (s *Session) OnQuit(hook QuitHook) error {
	if hook == nil {
		return nil
	}
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return hook(context.Background())
	}
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
	return nil
}

// Execute runs a command in this session. The session id is added to params
// unless already present, handles are wrapped on the way out and unwrapped
// on the way in. params is not modified.
func (s *Session) Execute(ctx context.Context, id string, params map[string]any) (*Envelope, error) {
	s.mu.RLock()
	state, sid := s.state, s.id
	s.mu.RUnlock()

	switch state {
	case StateClosed:
		return nil, ErrSessionClosed
	case StateUninitialized, StateEstablishing:
		if id != command.Status {
			return nil, ErrSessionNotStarted
		}
	}

	out := make(map[string]any, len(params)+1)
	maps.Copy(out, params)
	if _, ok := out["sessionId"]; !ok && sid != "" {
		out["sessionId"] = sid
	}
	wrapped, _ := Wrap(out).(map[string]any)

	env, err := s.executor.Execute(ctx, id, wrapped)
	if err != nil {
		return nil, err
	}
	env.Value = s.Unwrap(env.Value)
	return env, nil
}

// value runs a command and returns the unwrapped value.
func (s *Session) value(ctx context.Context, id string, params map[string]any) (any, error) {
	env, err := s.Execute(ctx, id, params)
	if err != nil {
		return nil, err
	}
	return env.Value, nil
}

// Quit ends the remote session and releases the transport. The remote quit
// is best effort; its failure is logged, not returned. Quit hooks and
// transport release always run. Calling Quit again is a no-op.
func (s *Session) Quit(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	wasActive := s.state == StateActive
	sid := s.id
	hooks := s.hooks
	s.hooks = nil
	s.state = StateClosed
	s.mu.Unlock()

	if wasActive {
		if _, err := s.executor.Execute(ctx, command.Quit, map[string]any{"sessionId": sid}); err != nil {
			s.logger.Warn("webdriver quit failed", slog.String("session_id", sid), slog.Any("error", err))
		}
	}

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.executor.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close transport: %w", err))
	}
	s.logger.Info("webdriver session closed", slog.String("session_id", sid))
	return errors.Join(errs...)
}
