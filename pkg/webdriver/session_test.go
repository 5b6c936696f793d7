package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *MockTransport) {
	t.Helper()
	ex, tr := newTestExecutor(t)
	return New(ex, opts...), tr
}

// attachedSession returns a session already bound to remote id "abc".
func attachedSession(t *testing.T, w3c bool, opts ...Option) (*Session, *MockTransport) {
	t.Helper()
	s, tr := newTestSession(t, opts...)
	require.NoError(t, s.Start(context.Background(), nil, WithSessionID("abc", w3c)))
	return s, tr
}

func TestStartW3CHandshake(t *testing.T) {
	s, tr := newTestSession(t)

	var sent map[string]any
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, testRemote+"/session", req.URL)
		require.NoError(t, json.Unmarshal(req.Body, &sent))
		return jsonResp(http.StatusOK, `{"value":{"sessionId":"abc","capabilities":{"browserName":"x"}}}`), nil
	})

	require.NoError(t, s.Start(context.Background(), map[string]any{"browserName": "x"}))

	assert.Equal(t, "abc", s.ID())
	assert.True(t, s.W3C())
	assert.True(t, s.Executor().W3C())
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, map[string]any{"browserName": "x"}, s.Capabilities())

	assert.Equal(t, map[string]any{"browserName": "x"}, sent["desiredCapabilities"])
	assert.Equal(t, map[string]any{
		"firstMatch":  []any{map[string]any{}},
		"alwaysMatch": map[string]any{"browserName": "x"},
	}, sent["capabilities"])
}

func TestStartLegacyHandshake(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(
		jsonResp(http.StatusOK, `{"status":0,"sessionId":"legacy-1","value":{"browserName":"x","version":"61"}}`), nil)

	require.NoError(t, s.Start(context.Background(), Capabilities{"browserName": "x"}))

	assert.Equal(t, "legacy-1", s.ID())
	assert.False(t, s.W3C())
	assert.Equal(t, "61", s.Capabilities()["version"])
}

func TestStartTwiceKeepsDialect(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(
		jsonResp(http.StatusOK, `{"value":{"sessionId":"abc","capabilities":{}}}`), nil)

	require.NoError(t, s.Start(context.Background(), map[string]any{}))
	err := s.Start(context.Background(), map[string]any{}, WithSessionID("other", false))
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, "abc", s.ID())
	assert.True(t, s.W3C())
}

func TestStartRejectsNonMapCapabilities(t *testing.T) {
	for _, caps := range []any{nil, "browserName=x", []string{"x"}, 42} {
		s, _ := newTestSession(t)
		err := s.Start(context.Background(), caps)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, StateUninitialized, s.State())
	}
}

type fakeOptions struct{ args []string }

func (o fakeOptions) ToCapabilities() map[string]any {
	return map[string]any{"browserName": "chrome", "goog:chromeOptions": map[string]any{"args": o.args}}
}

func TestStartAcceptsCapabilitiesProvider(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		var sent struct {
			Capabilities struct {
				AlwaysMatch map[string]any `json:"alwaysMatch"`
			} `json:"capabilities"`
		}
		require.NoError(t, json.Unmarshal(req.Body, &sent))
		assert.Contains(t, sent.Capabilities.AlwaysMatch, "goog:chromeOptions")
		return jsonResp(http.StatusOK, `{"value":{"sessionId":"abc","capabilities":{}}}`), nil
	})

	require.NoError(t, s.Start(context.Background(), fakeOptions{args: []string{"--headless"}}))
}

func TestStartMergesProfile(t *testing.T) {
	tests := []struct {
		name string
		caps map[string]any
		want func(t *testing.T, desired, always map[string]any)
	}{
		{
			name: "into firefox options",
			caps: map[string]any{"browserName": "firefox", "moz:firefoxOptions": map[string]any{"args": []any{"-headless"}}},
			want: func(t *testing.T, desired, always map[string]any) {
				opts := always["moz:firefoxOptions"].(map[string]any)
				assert.Equal(t, "UEsDBA==", opts["profile"])
				assert.NotContains(t, desired, "firefox_profile")
			},
		},
		{
			name: "as legacy key",
			caps: map[string]any{"browserName": "firefox"},
			want: func(t *testing.T, desired, always map[string]any) {
				assert.Equal(t, "UEsDBA==", desired["firefox_profile"])
				opts := always["moz:firefoxOptions"].(map[string]any)
				assert.Equal(t, "UEsDBA==", opts["profile"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tr := newTestSession(t)
			tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
				var sent map[string]any
				require.NoError(t, json.Unmarshal(req.Body, &sent))
				desired := sent["desiredCapabilities"].(map[string]any)
				always := sent["capabilities"].(map[string]any)["alwaysMatch"].(map[string]any)
				tt.want(t, desired, always)
				return jsonResp(http.StatusOK, `{"value":{"sessionId":"abc","capabilities":{}}}`), nil
			})

			require.NoError(t, s.Start(context.Background(), tt.caps, WithProfile("UEsDBA==")))
			_, mutated := tt.caps["firefox_profile"]
			assert.False(t, mutated, "caller capabilities must not be modified")
		})
	}
}

func TestStartFailureRevertsState(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(
		jsonResp(http.StatusInternalServerError, `{"value":{"error":"session not created","message":"no chrome binary"}}`), nil)

	err := s.Start(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrSessionNotCreated)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.ID())
}

func TestStartRejectsResponseWithoutSessionID(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(jsonResp(http.StatusOK, `{"value":{"capabilities":{}}}`), nil)

	err := s.Start(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, StateUninitialized, s.State())
}

func TestStartCancelledLeavesSessionUntouched(t *testing.T) {
	s, tr := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ *Request) (*Response, error) {
		cancel()
		return nil, ctx.Err()
	})

	err := s.Start(ctx, map[string]any{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.ID())
}

func TestAttachSkipsNegotiation(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.Start(context.Background(), "ignored", WithSessionID("existing", false)))
	assert.Equal(t, "existing", s.ID())
	assert.False(t, s.W3C())
	assert.Equal(t, StateActive, s.State())
}

func TestExecuteBeforeStart(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.Get(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrSessionNotStarted)
}

func TestExecuteInjectsSessionID(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		assert.Equal(t, testRemote+"/session/abc/url", req.URL)
		assert.JSONEq(t, `{"url":"https://example.com"}`, string(req.Body))
		return jsonResp(http.StatusOK, `{"value":null}`), nil
	})

	params := map[string]any{"url": "https://example.com"}
	_, err := s.Execute(context.Background(), "get", params)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://example.com"}, params)
}

func TestExecuteKeepsExplicitSessionID(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		assert.Equal(t, testRemote+"/session/other/title", req.URL)
		return jsonResp(http.StatusOK, `{"value":"t"}`), nil
	})

	_, err := s.Execute(context.Background(), "getTitle", map[string]any{"sessionId": "other"})
	require.NoError(t, err)
}

func TestClosedSessionFailsWithoutIO(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(jsonResp(http.StatusOK, `{"value":null}`), nil).Times(1)
	tr.EXPECT().Close().Return(nil)

	require.NoError(t, s.Quit(context.Background()))
	assert.Equal(t, StateClosed, s.State())

	// The mock fails the test on any further Do call.
	assert.ErrorIs(t, s.Get(context.Background(), "https://example.com"), ErrSessionClosed)
	_, err := s.Title(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Start(context.Background(), map[string]any{}), ErrSessionClosed)
	assert.NoError(t, s.Quit(context.Background()))
}

func TestQuitSwallowsRemoteFailure(t *testing.T) {
	hookRan := false
	s, tr := attachedSession(t, true, WithQuitHook(func(context.Context) error {
		hookRan = true
		return nil
	}))
	gomock.InOrder(
		tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
			assert.Equal(t, http.MethodDelete, req.Method)
			assert.Equal(t, testRemote+"/session/abc", req.URL)
			return nil, errors.New("connection reset")
		}),
		tr.EXPECT().Close().Return(nil),
	)

	assert.NoError(t, s.Quit(context.Background()))
	assert.True(t, hookRan)
}

func TestQuitReportsCleanupFailures(t *testing.T) {
	s, tr := attachedSession(t, true)
	stopErr := errors.New("service did not stop")
	require.NoError(t, s.OnQuit(func(context.Context) error { return stopErr }))
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(jsonResp(http.StatusOK, `{"value":null}`), nil)
	tr.EXPECT().Close().Return(nil)

	assert.ErrorIs(t, s.Quit(context.Background()), stopErr)
}

func TestOnQuitAfterQuitRunsImmediately(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(jsonResp(http.StatusOK, `{"value":null}`), nil)
	tr.EXPECT().Close().Return(nil)
	require.NoError(t, s.Quit(context.Background()))

	ran := 0
	require.NoError(t, s.OnQuit(func(context.Context) error {
		ran++
		return nil
	}))
	assert.Equal(t, 1, ran)

	lateErr := errors.New("late cleanup failed")
	assert.ErrorIs(t, s.OnQuit(func(context.Context) error { return lateErr }), lateErr)

	require.NoError(t, s.Quit(context.Background()))
	assert.Equal(t, 1, ran)
}

func TestQuitBeforeStartSkipsRemote(t *testing.T) {
	s, tr := newTestSession(t)
	tr.EXPECT().Close().Return(nil)

	require.NoError(t, s.Quit(context.Background()))
	assert.Equal(t, StateClosed, s.State())
}

func TestCookieMissingW3CIsNil(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		assert.Equal(t, testRemote+"/session/abc/cookie/missing", req.URL)
		return jsonResp(http.StatusNotFound, `{"value":{"error":"no such cookie","message":"missing","stacktrace":""}}`), nil
	})

	c, err := s.Cookie(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestCookieLegacyScansAll(t *testing.T) {
	s, tr := attachedSession(t, false)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *Request) (*Response, error) {
		assert.Equal(t, testRemote+"/session/abc/cookie", req.URL)
		return jsonResp(http.StatusOK, `{"status":0,"value":[{"name":"a","value":"1"},{"name":"b","value":"2","secure":true}]}`), nil
	}).Times(2)

	c, err := s.Cookie(context.Background(), "b")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, Cookie{Name: "b", Value: "2", Secure: true}, *c)

	c, err = s.Cookie(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCookieOtherErrorsPropagate(t *testing.T) {
	s, tr := attachedSession(t, true)
	tr.EXPECT().Do(gomock.Any(), gomock.Any()).Return(
		jsonResp(http.StatusNotFound, `{"value":{"error":"invalid session id","message":"gone"}}`), nil)

	_, err := s.Cookie(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestW3CCapabilitiesConversion(t *testing.T) {
	legacy := map[string]any{
		"browserName":        "firefox",
		"version":            "60",
		"platform":           "WINDOWS",
		"acceptSslCerts":     true,
		"javascriptEnabled":  true,
		"proxy":              map[string]any{"proxyType": "MANUAL", "httpProxy": "p:3128"},
		"goog:chromeOptions": map[string]any{"args": []any{"--headless"}},
	}

	got := W3CCapabilities(legacy)

	assert.Equal(t, []any{map[string]any{}}, got["firstMatch"])
	always := got["alwaysMatch"].(map[string]any)
	assert.Equal(t, "firefox", always["browserName"])
	assert.Equal(t, "60", always["browserVersion"])
	assert.Equal(t, "windows", always["platformName"])
	assert.Equal(t, true, always["acceptInsecureCerts"])
	assert.Equal(t, "manual", always["proxy"].(map[string]any)["proxyType"])
	assert.Contains(t, always, "goog:chromeOptions")
	assert.NotContains(t, always, "javascriptEnabled")
	assert.NotContains(t, always, "version")

	assert.Equal(t, "MANUAL", legacy["proxy"].(map[string]any)["proxyType"], "input must not be modified")
}
