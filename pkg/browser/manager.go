package browser

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// closeConcurrency bounds parallel quits in Manager.Close.
const closeConcurrency = 8

// Manager owns the sessions opened through a runtime, keyed by id.
type Manager struct {
	runtime Runtime

	mu      sync.Mutex
	open    map[string]BrowserSession
	pending map[string]struct{} // ids whose handshake is in flight
}

// NewManager returns a Manager that opens sessions through runtime.
func NewManager(runtime Runtime) *Manager {
	return &Manager{
		runtime: runtime,
		open:    make(map[string]BrowserSession),
		pending: make(map[string]struct{}),
	}
}

// CreateSession opens a session under cfg.SessionID, generating a ULID
// when it is empty. Ids are unique across open and in-flight sessions.
func (m *Manager) CreateSession(ctx context.Context, cfg SessionConfig) (BrowserSession, error) {
	if m == nil || m.runtime == nil {
		return nil, ErrUnavailable
	}
	if cfg.SessionID == "" {
		cfg.SessionID = ulid.Make().String()
	}
	id := cfg.SessionID
	if err := m.reserve(id); err != nil {
		return nil, err
	}

	sess, err := m.runtime.NewSession(ctx, cfg)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
	if err != nil {
		return nil, err
	}
	m.open[id] = sess
	return sess, nil
}

func (m *Manager) reserve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, isOpen := m.open[id]
	_, isPending := m.pending[id]
	if isOpen || isPending {
		return fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	m.pending[id] = struct{}{}
	return nil
}

// GetSession looks up an open session.
func (m *Manager) GetSession(id string) (BrowserSession, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.open[id]
	return sess, ok
}

// SessionIDs lists open sessions in id order, which for generated ids is
// creation order.
func (m *Manager) SessionIDs() []string {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.open))
}

// CloseSession forgets the session and closes it.
func (m *Manager) CloseSession(ctx context.Context, id string) error {
	if m == nil {
		return ErrUnavailable
	}
	m.mu.Lock()
	sess, ok := m.open[id]
	delete(m.open, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionClosed, id)
	}
	return sess.Close(ctx)
}

// Close quits every open session in parallel, then closes the runtime.
// All failures are joined.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	victims := slices.Collect(maps.Values(m.open))
	clear(m.open)
	m.mu.Unlock()

	errs := make([]error, len(victims)+1)
	var g errgroup.Group
	g.SetLimit(closeConcurrency)
	for i, sess := range victims {
		g.Go(func() error {
			errs[i] = sess.Close(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if m.runtime != nil {
		errs[len(victims)] = m.runtime.Close()
	}
	return errors.Join(errs...)
}
