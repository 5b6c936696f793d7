// Package fakeremote is an in-process WebDriver remote end for tests. It
// serves every route in a command catalog, keeps a small amount of browser
// state per session, and answers in either the W3C or the legacy dialect.
package fakeremote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// Dialect selects the response shape.
type Dialect int

const (
	W3C Dialect = iota
	Legacy
)

// Call is one request as seen by the server.
type Call struct {
	Command   string
	SessionID string
	Params    map[string]string
	Body      map[string]any
}

// Error is a remote failure to report.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Errorf builds an Error.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Handler answers a command. A nil *Error means success.
type Handler func(s *Server, c Call) (any, *Error)

// Server is the fake remote end.
type Server struct {
	dialect Dialect
	catalog *command.Catalog
	router  chi.Router

	mu       sync.Mutex
	handlers map[string]Handler
	sessions map[string]*session
	pages    map[string]string
	calls    []Call
	script   func(script string, args []any) (any, *Error)
}

// Option configures a Server.
type Option func(*Server)

// WithDialect picks W3C (default) or legacy responses.
func WithDialect(d Dialect) Option {
	return func(s *Server) { s.dialect = d }
}

// WithCatalog serves a catalog other than command.Base.
func WithCatalog(c *command.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithPage registers the HTML served for url.
func WithPage(url, html string) Option {
	return func(s *Server) { s.pages[url] = html }
}

// New builds a server.
func New(opts ...Option) *Server {
	s := &Server{
		catalog:  command.Base(),
		handlers: make(map[string]Handler),
		sessions: make(map[string]*session),
		pages:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerDefaults()
	s.router = s.routes()
	return s
}

// Start serves s on a loopback listener. Close the returned server when done.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handle overrides the behaviour of a command.
func (s *Server) Handle(id string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[id] = h
}

// HandleScript answers script execution.
func (s *Server) HandleScript(fn func(script string, args []any) (any, *Error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = fn
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many times id was invoked.
func (s *Server) CallCount(id string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Command == id {
			n++
		}
	}
	return n
}

// SessionIDs lists live sessions.
func (s *Server) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.contentType)

	// Several identifiers can share a route; the first with a handler wins.
	byRoute := make(map[[2]string][]string)
	for _, id := range s.catalog.IDs() {
		cmd, _ := s.catalog.Lookup(id)
		key := [2]string{cmd.Method, cmd.Path}
		byRoute[key] = append(byRoute[key], id)
	}
	for key, ids := range byRoute {
		r.MethodFunc(key[0], key[1], s.dispatch(ids, key[1]))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, "", Errorf("unknown command", "no route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, "", Errorf("unknown method", "method not allowed"))
	})
	return r
}

func (s *Server) contentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) dispatch(ids []string, pattern string) http.HandlerFunc {
	cmd := command.Command{Path: pattern}
	names := cmd.Placeholders()
	return func(w http.ResponseWriter, r *http.Request) {
		call := Call{Params: make(map[string]string, len(names))}
		for _, name := range names {
			call.Params[name] = chi.URLParam(r, name)
		}
		call.SessionID = call.Params["sessionId"]

		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				if err := json.Unmarshal(data, &call.Body); err != nil {
					s.writeError(w, call.SessionID, Errorf("invalid argument", "body is not a JSON object: %v", err))
					return
				}
			}
		}

		s.mu.Lock()
		var h Handler
		call.Command = ids[0]
		for _, id := range ids {
			if handler, ok := s.handlers[id]; ok {
				h, call.Command = handler, id
				break
			}
		}
		s.calls = append(s.calls, call)
		_, live := s.sessions[call.SessionID]
		s.mu.Unlock()

		if call.SessionID != "" && !live {
			s.writeError(w, call.SessionID, Errorf("invalid session id", "session %s does not exist", call.SessionID))
			return
		}
		if h == nil {
			s.writeValue(w, call.SessionID, nil)
			return
		}
		value, werr := h(s, call)
		if werr != nil {
			s.writeError(w, call.SessionID, werr)
			return
		}
		if reply, ok := value.(newSessionReply); ok {
			if s.dialect == Legacy {
				s.writeValue(w, reply.id, reply.caps)
				return
			}
			value = map[string]any{"sessionId": reply.id, "capabilities": reply.caps}
		}
		s.writeValue(w, call.SessionID, value)
	}
}

func (s *Server) writeValue(w http.ResponseWriter, sessionID string, value any) {
	var payload map[string]any
	if s.dialect == Legacy {
		payload = map[string]any{"status": 0, "sessionId": sessionID, "value": value}
	} else {
		payload = map[string]any{"value": value}
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, sessionID string, e *Error) {
	if s.dialect == Legacy {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    legacyStatus(e.Code),
			"sessionId": sessionID,
			"value":     map[string]any{"message": e.Message},
		})
		return
	}
	w.WriteHeader(httpStatus(e.Code))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"value": map[string]any{"error": e.Code, "message": e.Message, "stacktrace": ""},
	})
}

func httpStatus(code string) int {
	switch code {
	case "no such element", "no such frame", "no such window", "no such cookie", "no such alert",
		"no such shadow root", "stale element reference", "invalid session id", "unknown command":
		return http.StatusNotFound
	case "invalid argument", "invalid selector", "element not interactable", "element click intercepted":
		return http.StatusBadRequest
	case "unknown method":
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

func legacyStatus(code string) int {
	switch code {
	case "invalid session id":
		return 6
	case "no such element":
		return 7
	case "no such frame":
		return 8
	case "unknown command":
		return 9
	case "stale element reference":
		return 10
	case "javascript error":
		return 17
	case "timeout":
		return 21
	case "no such window":
		return 23
	case "invalid cookie domain":
		return 24
	case "no such alert":
		return 27
	case "invalid selector":
		return 32
	case "session not created":
		return 33
	case "invalid argument":
		return 61
	case "element not interactable":
		return 60
	case "no such cookie":
		return 62
	}
	return 13
}

func newID() string {
	return uuid.NewString()
}
