package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport is an http.RoundTripper that logs every exchange.
type LoggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
	bodies bool
}

// NewLoggingTransport wraps base. A nil base uses http.DefaultTransport.
func NewLoggingTransport(base http.RoundTripper, logger *slog.Logger, bodies bool) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingTransport{base: base, logger: logger, bodies: bodies}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	}

	if t.bodies && req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		if err == nil {
			attrs = append(attrs, slog.String("request_body", truncateBody(string(data))))
			req.Body = io.NopCloser(bytes.NewReader(data))
		}
		attrs = append(attrs, slog.Any("request_headers", sanitizeHeaders(req.Header)))
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	attrs = append(attrs, slog.Duration("duration", time.Since(start)))

	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		t.logger.LogAttrs(req.Context(), slog.LevelWarn, "webdriver http request failed", attrs...)
		return nil, err
	}

	attrs = append(attrs, slog.Int("status", resp.StatusCode))
	if t.bodies && resp.Body != nil {
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		attrs = append(attrs, slog.String("response_body", truncateBody(string(data))))
		resp.Body = io.NopCloser(bytes.NewReader(data))
	}

	t.logger.LogAttrs(req.Context(), slog.LevelDebug, "webdriver http request", attrs...)
	return resp, nil
}

// sanitizeHeaders flattens headers, masking credentials.
func sanitizeHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if strings.EqualFold(key, "Authorization") {
			result[key] = "[REDACTED]"
			continue
		}
		result[key] = strings.Join(values, ", ")
	}
	return result
}

// truncateBody limits logged payloads.
func truncateBody(body string) string {
	const maxLen = 4096
	if len(body) > maxLen {
		return body[:maxLen] + "...[truncated]"
	}
	return body
}
