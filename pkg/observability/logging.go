// Package observability carries the logging, metrics and tracing used
// across wdrive.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger is a structured logger for wdrive components.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stderr.
func NewLogger(component string, level slog.Level) *Logger {
	return NewLoggerTo(os.Stderr, component, level, false)
}

// NewLoggerTo creates a logger writing to w. text selects the logfmt-style
// handler instead of JSON.
func NewLoggerTo(w io.Writer, component string, level slog.Level, text bool) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(
		slog.String("component", component),
		slog.String("system", "wdrive"),
	)

	return &Logger{Logger: logger}
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// WithContext returns a logger carrying the trace and span ids of ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}
	return &Logger{
		Logger: l.Logger.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		),
	}
}

// WithSession returns a logger with session-specific fields
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			slog.String("session_id", sessionID),
		),
	}
}

// WithRemote returns a logger tagged with the remote end address.
func (l *Logger) WithRemote(url string) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			slog.String("remote_url", url),
		),
	}
}

// SessionStarted logs a completed handshake.
func (l *Logger) SessionStarted(sessionID string, w3c bool, browser string) {
	l.Info("session started",
		slog.String("session_id", sessionID),
		slog.Bool("w3c", w3c),
		slog.String("browser", browser),
	)
}

// CommandFailed logs a command the caller gave up on.
func (l *Logger) CommandFailed(command string, err error) {
	l.Warn("command failed",
		slog.String("command", command),
		slog.String("error", err.Error()),
	)
}
