package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestManagerCreateAssignsULID(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	sess := NewMockBrowserSession(ctrl)

	var got SessionConfig
	rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg SessionConfig) (BrowserSession, error) {
			got = cfg
			return sess, nil
		})

	m := NewManager(rt)
	out, err := m.CreateSession(context.Background(), DefaultSessionConfig())
	require.NoError(t, err)
	assert.Same(t, sess, out)

	_, err = ulid.ParseStrict(got.SessionID)
	require.NoError(t, err)

	found, ok := m.GetSession(got.SessionID)
	assert.True(t, ok)
	assert.Same(t, sess, found)
	assert.Equal(t, []string{got.SessionID}, m.SessionIDs())
}

func TestManagerRejectsDuplicateID(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(NewMockBrowserSession(ctrl), nil)

	m := NewManager(rt)
	cfg := DefaultSessionConfig()
	cfg.SessionID = "one"
	_, err := m.CreateSession(context.Background(), cfg)
	require.NoError(t, err)

	_, err = m.CreateSession(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestManagerRejectsIDWhileHandshakeInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	entered := make(chan struct{})
	release := make(chan struct{})
	sess := NewMockBrowserSession(ctrl)
	rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, SessionConfig) (BrowserSession, error) {
			close(entered)
			<-release
			return sess, nil
		})

	m := NewManager(rt)
	done := make(chan error, 1)
	go func() {
		_, err := m.CreateSession(context.Background(), SessionConfig{SessionID: "slow"})
		done <- err
	}()
	<-entered

	_, ok := m.GetSession("slow")
	assert.False(t, ok)
	_, err := m.CreateSession(context.Background(), SessionConfig{SessionID: "slow"})
	assert.ErrorIs(t, err, ErrSessionExists)

	close(release)
	require.NoError(t, <-done)
	_, ok = m.GetSession("slow")
	assert.True(t, ok)
}

func TestManagerCreateFailureReleasesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	boom := errors.New("boom")
	sess := NewMockBrowserSession(ctrl)
	gomock.InOrder(
		rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(nil, boom),
		rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(sess, nil),
	)

	m := NewManager(rt)
	cfg := SessionConfig{SessionID: "retry"}
	_, err := m.CreateSession(context.Background(), cfg)
	assert.ErrorIs(t, err, boom)
	_, ok := m.GetSession("retry")
	assert.False(t, ok)

	_, err = m.CreateSession(context.Background(), cfg)
	require.NoError(t, err)
}

func TestManagerCloseSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	sess := NewMockBrowserSession(ctrl)
	rt.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(sess, nil)
	sess.EXPECT().Close(gomock.Any()).Return(nil)

	m := NewManager(rt)
	_, err := m.CreateSession(context.Background(), SessionConfig{SessionID: "s"})
	require.NoError(t, err)

	require.NoError(t, m.CloseSession(context.Background(), "s"))
	assert.ErrorIs(t, m.CloseSession(context.Background(), "s"), ErrSessionClosed)
	assert.Empty(t, m.SessionIDs())
}

func TestManagerCloseJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	errA := errors.New("a failed")
	errRT := errors.New("runtime failed")

	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		sess := NewMockBrowserSession(ctrl)
		rt.EXPECT().NewSession(gomock.Any(), SessionConfig{SessionID: id}).Return(sess, nil)
		if id == "a" {
			sess.EXPECT().Close(gomock.Any()).Return(errA)
		} else {
			sess.EXPECT().Close(gomock.Any()).Return(nil)
		}
	}
	rt.EXPECT().Close().Return(errRT)

	m := NewManager(rt)
	for _, id := range ids {
		_, err := m.CreateSession(context.Background(), SessionConfig{SessionID: id})
		require.NoError(t, err)
	}

	err := m.Close(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errRT)
	assert.Empty(t, m.SessionIDs())
}

func TestManagerWithoutRuntime(t *testing.T) {
	var m *Manager
	_, err := m.CreateSession(context.Background(), SessionConfig{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, m.Close(context.Background()))

	_, err = NewManager(nil).CreateSession(context.Background(), SessionConfig{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordSessionCreated("s")
	m.RecordAction("s", ActionClick, true, 0)
	m.RecordAction("s", ActionClick, false, 0)
	m.RecordSessionClosed("s")

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.SessionsCreated)
	assert.Equal(t, int64(0), snap.ActiveSessions)
	assert.Equal(t, int64(2), snap.ActionCount)
	assert.InDelta(t, 0.5, snap.ActionSuccessRate, 1e-9)

	var nilMetrics *Metrics
	nilMetrics.RecordNavigate("s", "about:blank", 0)
	assert.Equal(t, MetricsSnapshot{}, nilMetrics.Snapshot())
}
