package webdriver

import (
	"bytes"
	"encoding/json"
	"math"
	"mime"
	"strconv"
	"strings"
)

// Envelope is a decoded command response.
type Envelope struct {
	// Status is the legacy numeric status. Nil when the response carried
	// no status, which is the W3C shape.
	Status    *int
	Value     any
	SessionID string
	// HTTPStatus is the status of the final HTTP response. Zero when the
	// envelope was synthesized locally.
	HTTPStatus int
	// Raw is the decoded top-level JSON object, nil for non-object bodies.
	Raw map[string]any
}

// Success reports whether the envelope carries no legacy error status.
func (e *Envelope) Success() bool {
	return e.Status == nil || *e.Status == StatusSuccess
}

func statusPtr(n int) *int {
	return &n
}

// successEnvelope is returned when the remote end sends no body.
func successEnvelope(sessionID string, httpStatus int) *Envelope {
	return &Envelope{
		Status:     statusPtr(StatusSuccess),
		SessionID:  sessionID,
		HTTPStatus: httpStatus,
	}
}

func isSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

func isPNG(contentType string) bool {
	for part := range strings.SplitSeq(contentType, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			mediaType = strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		}
		if strings.EqualFold(mediaType, "image/png") {
			return true
		}
	}
	return false
}

// decodeEnvelope turns an HTTP response into an envelope without judging
// whether it reports a failure.
func decodeEnvelope(resp *Response, sessionID string) *Envelope {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 && isSuccessStatus(resp.StatusCode) {
		return successEnvelope(sessionID, resp.StatusCode)
	}

	if isPNG(resp.Header.Get("Content-Type")) {
		return &Envelope{
			Status:     statusPtr(StatusSuccess),
			Value:      resp.Body,
			HTTPStatus: resp.StatusCode,
		}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		status := StatusUnknownError
		if isSuccessStatus(resp.StatusCode) {
			status = StatusSuccess
		}
		return &Envelope{
			Status:     statusPtr(status),
			Value:      string(body),
			HTTPStatus: resp.StatusCode,
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return &Envelope{Value: decoded, HTTPStatus: resp.StatusCode}
	}
	if _, ok := obj["value"]; !ok {
		obj["value"] = nil
	}
	env := &Envelope{
		Status:     parseStatus(obj["status"]),
		Value:      obj["value"],
		HTTPStatus: resp.StatusCode,
		Raw:        obj,
	}
	env.SessionID, _ = obj["sessionId"].(string)
	return env
}

func parseStatus(v any) *int {
	switch s := v.(type) {
	case float64:
		if s == math.Trunc(s) {
			return statusPtr(int(s))
		}
	case string:
		if n, err := strconv.Atoi(s); err == nil {
			return statusPtr(n)
		}
	}
	return nil
}

// Classify maps an envelope to the error it reports, or nil on success.
// It performs no I/O.
func Classify(env *Envelope) error {
	if env == nil {
		return nil
	}
	status := StatusSuccess
	if env.Status != nil {
		status = *env.Status
	}
	failedHTTP := env.HTTPStatus >= 400
	if status == StatusSuccess && !failedHTTP {
		return nil
	}

	value := env.Value
	if s, ok := value.(string); ok {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			value = parsed
		}
	}
	detail, _ := value.(map[string]any)
	if inner, ok := detail["value"]; ok && len(detail) == 1 {
		value = inner
		detail, _ = inner.(map[string]any)
	}

	derr := &DriverError{
		Status:     status,
		HTTPStatus: env.HTTPStatus,
		Value:      env.Value,
	}
	if code, ok := detail["error"].(string); ok && code != "" {
		derr.Code = code
	} else if n := parseStatus(detail["status"]); n != nil && *n != StatusSuccess {
		derr.Status = *n
	}
	if derr.Code == "" && derr.Status != StatusSuccess {
		derr.Code, _ = StatusCode(derr.Status)
	}
	if derr.Code == "" {
		derr.Code = CodeUnknownError
	}

	switch msg := detail["message"].(type) {
	case string:
		derr.Message = msg
	default:
		// Legacy drivers nest the message one level down.
		if nested, ok := detail["value"].(map[string]any); ok {
			derr.Message, _ = nested["message"].(string)
		} else if s, ok := detail["value"].(string); ok {
			derr.Message = s
		}
	}
	switch st := detail["stacktrace"].(type) {
	case string:
		derr.Stacktrace = st
	case []any:
		lines := make([]string, 0, len(st))
		for _, frame := range st {
			if b, err := json.Marshal(frame); err == nil {
				lines = append(lines, string(b))
			}
		}
		derr.Stacktrace = strings.Join(lines, "\n")
	}
	return derr
}
