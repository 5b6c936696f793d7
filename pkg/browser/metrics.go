package browser

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks session pool counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	SessionsCreated atomic.Int64
	SessionsClosed  atomic.Int64
	ActiveSessions  atomic.Int64

	NavigateCount atomic.Int64
	ObserveCount  atomic.Int64

	ActionSuccessCount atomic.Int64
	ActionFailureCount atomic.Int64
	ActionLatencySum   atomic.Int64 // nanoseconds

	logger atomic.Pointer[slog.Logger]
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// EnableLogging emits a debug record for every recorded event.
func (m *Metrics) EnableLogging(logger *slog.Logger) {
	if m == nil {
		return
	}
	m.logger.Store(logger)
}

func (m *Metrics) RecordSessionCreated(sessionID string) {
	if m == nil {
		return
	}
	m.SessionsCreated.Add(1)
	m.ActiveSessions.Add(1)
	m.log("browser session created", slog.String("browser_session_id", sessionID))
}

func (m *Metrics) RecordSessionClosed(sessionID string) {
	if m == nil {
		return
	}
	m.SessionsClosed.Add(1)
	m.ActiveSessions.Add(-1)
	m.log("browser session closed", slog.String("browser_session_id", sessionID))
}

func (m *Metrics) RecordNavigate(sessionID, url string, latency time.Duration) {
	if m == nil {
		return
	}
	m.NavigateCount.Add(1)
	m.log("browser navigate",
		slog.String("browser_session_id", sessionID),
		slog.String("url", url),
		slog.Int64("latency_ms", latency.Milliseconds()))
}

func (m *Metrics) RecordObserve(sessionID string, latency time.Duration) {
	if m == nil {
		return
	}
	m.ObserveCount.Add(1)
	m.log("browser observe",
		slog.String("browser_session_id", sessionID),
		slog.Int64("latency_ms", latency.Milliseconds()))
}

// RecordAction tracks an action outcome.
func (m *Metrics) RecordAction(sessionID string, action ActionType, success bool, latency time.Duration) {
	if m == nil {
		return
	}
	if success {
		m.ActionSuccessCount.Add(1)
	} else {
		m.ActionFailureCount.Add(1)
	}
	m.ActionLatencySum.Add(latency.Nanoseconds())
	m.log("browser action",
		slog.String("browser_session_id", sessionID),
		slog.String("action_type", string(action)),
		slog.Bool("success", success),
		slog.Int64("latency_ms", latency.Milliseconds()))
}

func (m *Metrics) log(msg string, attrs ...slog.Attr) {
	if logger := m.logger.Load(); logger != nil {
		logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	successCount := m.ActionSuccessCount.Load()
	failCount := m.ActionFailureCount.Load()
	total := successCount + failCount
	successRate := 1.0
	avg := time.Duration(0)
	if total > 0 {
		successRate = float64(successCount) / float64(total)
		avg = time.Duration(m.ActionLatencySum.Load() / total)
	}
	return MetricsSnapshot{
		SessionsCreated:      m.SessionsCreated.Load(),
		SessionsClosed:       m.SessionsClosed.Load(),
		ActiveSessions:       m.ActiveSessions.Load(),
		NavigateCount:        m.NavigateCount.Load(),
		ObserveCount:         m.ObserveCount.Load(),
		ActionCount:          total,
		ActionSuccessCount:   successCount,
		ActionFailureCount:   failCount,
		ActionSuccessRate:    successRate,
		AverageActionLatency: avg,
	}
}

// MetricsSnapshot is a point-in-time copy of browser metrics.
type MetricsSnapshot struct {
	SessionsCreated      int64
	SessionsClosed       int64
	ActiveSessions       int64
	NavigateCount        int64
	ObserveCount         int64
	ActionCount          int64
	ActionSuccessCount   int64
	ActionFailureCount   int64
	ActionSuccessRate    float64
	AverageActionLatency time.Duration
}
