package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

const (
	outcomeOK        = "ok"
	outcomeTransport = "transport"
)

// Metrics records command and session metrics. It is a webdriver.Observer.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	SessionsActive  prometheus.Gauge
	RedirectsTotal  prometheus.Counter
}

// NewMetrics registers the wdrive metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wdrive",
				Name:      "commands_total",
				Help:      "Total number of WebDriver commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wdrive",
				Name:      "command_duration_seconds",
				Help:      "WebDriver command latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"command"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wdrive",
				Name:      "sessions_active",
				Help:      "Number of sessions started and not yet quit",
			},
		),
		RedirectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wdrive",
				Name:      "redirects_total",
				Help:      "Total number of redirects followed by the executor",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CommandStarted(ctx context.Context, _ string) context.Context {
	return ctx
}

func (m *Metrics) CommandFinished(_ context.Context, ev webdriver.CommandEvent) {
	m.CommandsTotal.WithLabelValues(ev.Command, outcome(ev.Err)).Inc()
	m.CommandDuration.WithLabelValues(ev.Command).Observe(ev.Duration.Seconds())
	if ev.Redirects > 0 {
		m.RedirectsTotal.Add(float64(ev.Redirects))
	}
}

// TrackSession counts s as active until it quits. A session that already
// quit is never counted.
func (m *Metrics) TrackSession(s *webdriver.Session) {
	m.SessionsActive.Inc()
	_ = s.OnQuit(func(context.Context) error {
		m.SessionsActive.Dec()
		return nil
	})
}

// outcome labels an error by its W3C code. Codes outside the known table
// collapse to unknown error so a misbehaving remote cannot grow the label set.
func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	var derr *webdriver.DriverError
	if errors.As(err, &derr) {
		if !webdriver.KnownCode(derr.Code) {
			return webdriver.CodeUnknownError
		}
		return derr.Code
	}
	return outcomeTransport
}
