package webdriver

import (
	"context"
	"net/http"
)

//go:generate mockgen -package=webdriver -destination=mock_transport_test.go github.com/odvcencio/wdrive/pkg/webdriver Transport

// Transport performs a single HTTP exchange with the remote end. It must not
// follow redirects itself and must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	// Close releases pooled connections. Calls after Close may fail.
	Close() error
}

// Request is one outgoing HTTP request. Body is nil for methods that carry
// no payload.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Response is the raw result of a Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
