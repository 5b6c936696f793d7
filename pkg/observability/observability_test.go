package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/odvcencio/wdrive/internal/fakeremote"
	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/command"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "executor", slog.LevelInfo, false)
	logger.WithSession("abc").SessionStarted("abc", true, "chrome")
	logger.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "executor", rec["component"])
	assert.Equal(t, "wdrive", rec["system"])
	assert.Equal(t, "abc", rec["session_id"])
	assert.Equal(t, true, rec["w3c"])
	assert.Equal(t, "session started", rec["msg"])
}

func TestLoggerWithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test", slog.LevelInfo, true)
	assert.Same(t, logger, logger.WithContext(context.Background()))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.WithContext(ctx).Info("inside")
	assert.Contains(t, buf.String(), "trace_id="+span.SpanContext().TraceID().String())
	assert.Contains(t, buf.String(), "span_id="+span.SpanContext().SpanID().String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{" WARN ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetrics()
	ctx := m.CommandStarted(context.Background(), command.GetTitle)

	m.CommandFinished(ctx, webdriver.CommandEvent{Command: command.GetTitle, Duration: 20 * time.Millisecond})
	m.CommandFinished(ctx, webdriver.CommandEvent{
		Command:   command.FindElement,
		Redirects: 2,
		Err:       &webdriver.DriverError{Code: webdriver.CodeNoSuchElement},
	})
	m.CommandFinished(ctx, webdriver.CommandEvent{Command: command.FindElement, Err: errors.New("dial tcp: refused")})
	for _, code := range []string{"", "made up failure", "made up failure 2"} {
		m.CommandFinished(ctx, webdriver.CommandEvent{Command: command.GetTitle, Err: &webdriver.DriverError{Code: code}})
	}
	m.CommandFinished(ctx, webdriver.CommandEvent{Command: command.AddCookie, Err: &webdriver.DriverError{Code: webdriver.CodeInvalidCookieDomain}})

	assert.InDelta(t, 1, testutil.ToFloat64(m.CommandsTotal.WithLabelValues(command.GetTitle, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CommandsTotal.WithLabelValues(command.FindElement, "no such element")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CommandsTotal.WithLabelValues(command.FindElement, "transport")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.CommandsTotal.WithLabelValues(command.GetTitle, webdriver.CodeUnknownError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CommandsTotal.WithLabelValues(command.AddCookie, webdriver.CodeInvalidCookieDomain)), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(m.CommandsTotal))
	assert.InDelta(t, 2, testutil.ToFloat64(m.RedirectsTotal), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(m.CommandDuration))
}

func TestMetricsHandlerAndSessions(t *testing.T) {
	m := NewMetrics()
	srv := fakeremote.New().Start()
	defer srv.Close()

	ex, err := webdriver.NewExecutor(srv.URL, transport.New(), webdriver.WithObserver(m))
	require.NoError(t, err)
	s := webdriver.New(ex)
	require.NoError(t, s.Start(context.Background(), map[string]any{}))
	m.TrackSession(s)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsActive), 0)

	_, err = s.Title(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Quit(context.Background()))
	assert.InDelta(t, 0, testutil.ToFloat64(m.SessionsActive), 0)

	lateEx, err := webdriver.NewExecutor(srv.URL, transport.New())
	require.NoError(t, err)
	late := webdriver.New(lateEx)
	require.NoError(t, late.Quit(context.Background()))
	m.TrackSession(late)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SessionsActive), 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `wdrive_commands_total{command="getTitle",outcome="ok"} 1`)
	assert.Contains(t, string(body), `wdrive_commands_total{command="newSession",outcome="ok"} 1`)
}

func TestTracingObserver(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracing(tp.Tracer("test"))

	ctx := tr.CommandStarted(context.Background(), command.Get)
	tr.CommandFinished(ctx, webdriver.CommandEvent{Command: command.Get, Method: "POST", HTTPStatus: 200})

	ctx = tr.CommandStarted(context.Background(), command.FindElement)
	tr.CommandFinished(ctx, webdriver.CommandEvent{
		Command:    command.FindElement,
		Method:     "POST",
		HTTPStatus: 404,
		Err:        &webdriver.DriverError{Code: webdriver.CodeNoSuchElement, Message: "gone"},
	})

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "webdriver "+command.Get, spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	attrs := map[string]any{}
	for _, kv := range failed.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, command.FindElement, attrs["webdriver.command"])
	assert.Equal(t, int64(404), attrs["http.response.status_code"])
	assert.Equal(t, "no such element", attrs["webdriver.error"])
	require.Len(t, failed.Events(), 1)
	assert.Equal(t, "exception", failed.Events()[0].Name)
}

func TestTracerProviderExportsJSON(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider("wdrive-test", "dev", &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "probe")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"probe"`)
}
