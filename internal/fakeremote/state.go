package fakeremote

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"maps"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

const (
	// MainWindow is the handle of the only window a session has.
	MainWindow = "window-1"

	elementKey       = "element-6066-11e4-a52e-4f735466cecf"
	legacyElementKey = "ELEMENT"

	blankPage = "<html><head><title></title></head><body></body></html>"
)

// ScreenshotPNG is the image every screenshot returns.
var ScreenshotPNG = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}()

type session struct {
	caps     map[string]any
	url      string
	html     string
	doc      *goquery.Document
	history  []string
	forward  []string
	cookies  []map[string]any
	elements map[string]*goquery.Selection
	timeouts map[string]any
	rect     map[string]any
}

var elementSeq atomic.Int64

// newSessionReply carries the id separately because the legacy dialect puts
// it at the top level.
type newSessionReply struct {
	id   string
	caps map[string]any
}

func (s *Server) registerDefaults() {
	s.handlers[command.Status] = func(*Server, Call) (any, *Error) {
		return map[string]any{"ready": true, "message": "fakeremote ready"}, nil
	}
	s.handlers[command.NewSession] = handleNewSession
	s.handlers[command.Quit] = func(s *Server, c Call) (any, *Error) {
		s.mu.Lock()
		delete(s.sessions, c.SessionID)
		s.mu.Unlock()
		return nil, nil
	}

	s.handlers[command.Get] = withSession(func(sess *session, c Call, s *Server) (any, *Error) {
		url, _ := c.Body["url"].(string)
		if url == "" {
			return nil, Errorf("invalid argument", "url is required")
		}
		if sess.url != "" {
			sess.history = append(sess.history, sess.url)
		}
		sess.forward = nil
		return nil, s.navigate(sess, url)
	})
	s.handlers[command.GoBack] = withSession(func(sess *session, _ Call, s *Server) (any, *Error) {
		if len(sess.history) == 0 {
			return nil, nil
		}
		prev := sess.history[len(sess.history)-1]
		sess.history = sess.history[:len(sess.history)-1]
		sess.forward = append(sess.forward, sess.url)
		return nil, s.navigate(sess, prev)
	})
	s.handlers[command.GoForward] = withSession(func(sess *session, _ Call, s *Server) (any, *Error) {
		if len(sess.forward) == 0 {
			return nil, nil
		}
		next := sess.forward[len(sess.forward)-1]
		sess.forward = sess.forward[:len(sess.forward)-1]
		sess.history = append(sess.history, sess.url)
		return nil, s.navigate(sess, next)
	})
	s.handlers[command.GetCurrentURL] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return sess.url, nil
	})
	s.handlers[command.GetTitle] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return strings.TrimSpace(sess.doc.Find("title").First().Text()), nil
	})
	s.handlers[command.GetPageSource] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return sess.html, nil
	})

	s.handlers[command.Screenshot] = func(*Server, Call) (any, *Error) {
		return base64.StdEncoding.EncodeToString(ScreenshotPNG), nil
	}
	s.handlers[command.ElementScreenshot] = s.handlers[command.Screenshot]

	for _, id := range []string{command.W3CExecuteScript, command.ExecuteScript, command.W3CExecuteScriptAsync, command.ExecuteAsyncScript} {
		s.handlers[id] = func(s *Server, c Call) (any, *Error) {
			s.mu.Lock()
			fn := s.script
			s.mu.Unlock()
			if fn == nil {
				return nil, nil
			}
			script, _ := c.Body["script"].(string)
			args, _ := c.Body["args"].([]any)
			return fn(script, args)
		}
	}

	s.registerElementHandlers()
	s.registerCookieHandlers()
	s.registerWindowHandlers()
}

func handleNewSession(s *Server, c Call) (any, *Error) {
	caps := map[string]any{}
	if w3c, ok := c.Body["capabilities"].(map[string]any); ok {
		if always, ok := w3c["alwaysMatch"].(map[string]any); ok {
			maps.Copy(caps, always)
		}
	}
	if len(caps) == 0 {
		if desired, ok := c.Body["desiredCapabilities"].(map[string]any); ok {
			maps.Copy(caps, desired)
		}
	}
	if _, ok := caps["browserName"]; !ok {
		caps["browserName"] = "fake"
	}
	caps["browserVersion"] = "1.0"

	sess := &session{
		caps:     caps,
		elements: make(map[string]*goquery.Selection),
		timeouts: map[string]any{"implicit": 0, "pageLoad": 300000, "script": 30000},
		rect:     map[string]any{"x": 0, "y": 0, "width": 1280, "height": 800},
	}
	if err := s.navigate(sess, "about:blank"); err != nil {
		return nil, err
	}
	id := newID()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return newSessionReply{id: id, caps: caps}, nil
}

// withSession runs fn holding the server lock with the caller's session.
func withSession(fn func(sess *session, c Call, s *Server) (any, *Error)) Handler {
	return func(s *Server, c Call) (any, *Error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		sess, ok := s.sessions[c.SessionID]
		if !ok {
			return nil, Errorf("invalid session id", "session %s does not exist", c.SessionID)
		}
		return fn(sess, c, s)
	}
}

// navigate loads url into sess. Callers hold s.mu.
func (s *Server) navigate(sess *session, url string) *Error {
	html, ok := s.pages[url]
	if !ok {
		html = blankPage
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Errorf("unknown error", "parse page: %v", err)
	}
	sess.url = url
	sess.html = html
	sess.doc = doc
	sess.elements = make(map[string]*goquery.Selection)
	return nil
}

func (s *Server) elementRef(id string) map[string]any {
	if s.dialect == Legacy {
		return map[string]any{legacyElementKey: id}
	}
	return map[string]any{elementKey: id}
}

// register stores sel and returns its wire reference. Callers hold s.mu.
func (s *Server) register(sess *session, sel *goquery.Selection) map[string]any {
	id := fmt.Sprintf("el-%d", elementSeq.Add(1))
	sess.elements[id] = sel
	return s.elementRef(id)
}

func locate(root *goquery.Selection, using, value string) (*goquery.Selection, *Error) {
	switch using {
	case "css selector", "tag name":
		return root.Find(value), nil
	case "id":
		return root.Find(fmt.Sprintf("[id=%q]", value)), nil
	case "name":
		return root.Find(fmt.Sprintf("[name=%q]", value)), nil
	case "class name":
		return root.Find("." + value), nil
	case "link text", "partial link text":
		return root.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			text := strings.TrimSpace(a.Text())
			if using == "link text" {
				return text == value
			}
			return strings.Contains(text, value)
		}), nil
	}
	return nil, Errorf("invalid selector", "unsupported strategy %q", using)
}

func (s *Server) registerElementHandlers() {
	find := func(many bool, scoped bool) Handler {
		return withSession(func(sess *session, c Call, s *Server) (any, *Error) {
			root := sess.doc.Selection
			if scoped {
				parent, ok := sess.elements[c.Params["id"]]
				if !ok {
					return nil, Errorf("stale element reference", "element %s is not attached", c.Params["id"])
				}
				root = parent
			}
			using, _ := c.Body["using"].(string)
			value, _ := c.Body["value"].(string)
			found, err := locate(root, using, value)
			if err != nil {
				return nil, err
			}
			if many {
				refs := make([]any, 0, found.Length())
				found.Each(func(_ int, sel *goquery.Selection) {
					refs = append(refs, s.register(sess, sel))
				})
				return refs, nil
			}
			if found.Length() == 0 {
				return nil, Errorf("no such element", "unable to locate %s %q", using, value)
			}
			return s.register(sess, found.First()), nil
		})
	}
	s.handlers[command.FindElement] = find(false, false)
	s.handlers[command.FindElements] = find(true, false)
	s.handlers[command.FindChildElement] = find(false, true)
	s.handlers[command.FindChildElements] = find(true, true)

	element := func(fn func(sess *session, id string, sel *goquery.Selection, c Call, s *Server) (any, *Error)) Handler {
		return withSession(func(sess *session, c Call, s *Server) (any, *Error) {
			id := c.Params["id"]
			sel, ok := sess.elements[id]
			if !ok {
				return nil, Errorf("stale element reference", "element %s is not attached", id)
			}
			return fn(sess, id, sel, c, s)
		})
	}

	s.handlers[command.GetElementText] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		return strings.TrimSpace(sel.Text()), nil
	})
	s.handlers[command.GetElementTagName] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		return goquery.NodeName(sel), nil
	})
	attr := element(func(_ *session, _ string, sel *goquery.Selection, c Call, _ *Server) (any, *Error) {
		name := c.Params["name"]
		if name == "index" && goquery.NodeName(sel) == "option" {
			return fmt.Sprint(sel.Closest("select").Find("option").IndexOfSelection(sel)), nil
		}
		v, ok := sel.Attr(name)
		if !ok {
			return nil, nil
		}
		return v, nil
	})
	s.handlers[command.GetElementAttribute] = attr
	s.handlers[command.GetElementProperty] = func(s *Server, c Call) (any, *Error) {
		if c.Params["name"] != "outerHTML" {
			return attr(s, c)
		}
		return element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
			html, err := goquery.OuterHtml(sel)
			if err != nil {
				return nil, Errorf("unknown error", "render element: %v", err)
			}
			return html, nil
		})(s, c)
	}
	s.handlers[command.IsElementEnabled] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		_, disabled := sel.Attr("disabled")
		return !disabled, nil
	})
	s.handlers[command.IsElementSelected] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		_, checked := sel.Attr("checked")
		_, selected := sel.Attr("selected")
		return checked || selected, nil
	})
	s.handlers[command.IsElementDisplayed] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		_, hidden := sel.Attr("hidden")
		return !hidden, nil
	})
	s.handlers[command.GetElementRect] = element(func(_ *session, _ string, _ *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		return map[string]any{"x": 8, "y": 16, "width": 120, "height": 24}, nil
	})
	s.handlers[command.ClickElement] = element(func(sess *session, _ string, sel *goquery.Selection, _ Call, s *Server) (any, *Error) {
		switch goquery.NodeName(sel) {
		case "a":
			if href, ok := sel.Attr("href"); ok {
				sess.history = append(sess.history, sess.url)
				sess.forward = nil
				return nil, s.navigate(sess, href)
			}
		case "option":
			toggleOption(sel)
		case "input":
			if t, _ := sel.Attr("type"); t == "checkbox" || t == "radio" {
				if _, on := sel.Attr("checked"); on && t == "checkbox" {
					sel.RemoveAttr("checked")
				} else {
					sel.SetAttr("checked", "checked")
				}
			}
		}
		return nil, nil
	})
	s.handlers[command.SendKeysToElement] = element(func(_ *session, id string, sel *goquery.Selection, c Call, _ *Server) (any, *Error) {
		if _, disabled := sel.Attr("disabled"); disabled {
			return nil, Errorf("element not interactable", "element %s is disabled", id)
		}
		text, _ := c.Body["text"].(string)
		if text == "" {
			parts, _ := c.Body["value"].([]any)
			for _, p := range parts {
				if str, ok := p.(string); ok {
					text += str
				}
			}
		}
		current, _ := sel.Attr("value")
		sel.SetAttr("value", current+text)
		return nil, nil
	})
	s.handlers[command.ClearElement] = element(func(_ *session, _ string, sel *goquery.Selection, _ Call, _ *Server) (any, *Error) {
		sel.SetAttr("value", "")
		return nil, nil
	})
}

func (s *Server) registerCookieHandlers() {
	s.handlers[command.GetAllCookies] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		out := make([]any, 0, len(sess.cookies))
		for _, c := range sess.cookies {
			out = append(out, maps.Clone(c))
		}
		return out, nil
	})
	s.handlers[command.GetCookie] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		for _, cookie := range sess.cookies {
			if cookie["name"] == c.Params["name"] {
				return maps.Clone(cookie), nil
			}
		}
		return nil, Errorf("no such cookie", "cookie %s not found", c.Params["name"])
	})
	s.handlers[command.AddCookie] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		cookie, ok := c.Body["cookie"].(map[string]any)
		if !ok {
			return nil, Errorf("invalid argument", "cookie object is required")
		}
		name, _ := cookie["name"].(string)
		if name == "" {
			return nil, Errorf("invalid argument", "cookie name is required")
		}
		if domain, _ := cookie["domain"].(string); domain != "" && !domainMatches(sess.url, domain) {
			return nil, Errorf("invalid cookie domain", "cookie %s is for %s, page is %s", name, domain, sess.url)
		}
		kept := sess.cookies[:0]
		for _, existing := range sess.cookies {
			if existing["name"] != name {
				kept = append(kept, existing)
			}
		}
		sess.cookies = append(kept, maps.Clone(cookie))
		return nil, nil
	})
	s.handlers[command.DeleteCookie] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		kept := sess.cookies[:0]
		for _, existing := range sess.cookies {
			if existing["name"] != c.Params["name"] {
				kept = append(kept, existing)
			}
		}
		sess.cookies = kept
		return nil, nil
	})
	s.handlers[command.DeleteAllCookies] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		sess.cookies = nil
		return nil, nil
	})
}

func (s *Server) registerWindowHandlers() {
	current := func(*Server, Call) (any, *Error) { return MainWindow, nil }
	all := func(*Server, Call) (any, *Error) { return []any{MainWindow}, nil }
	s.handlers[command.W3CGetCurrentWindowHandle] = current
	s.handlers[command.GetCurrentWindowHandle] = current
	s.handlers[command.W3CGetWindowHandles] = all
	s.handlers[command.GetWindowHandles] = all
	s.handlers[command.SwitchToWindow] = func(_ *Server, c Call) (any, *Error) {
		target, _ := c.Body["handle"].(string)
		if target == "" {
			target, _ = c.Body["name"].(string)
		}
		if target != MainWindow {
			return nil, Errorf("no such window", "window %s not found", target)
		}
		return nil, nil
	}
	s.handlers[command.GetWindowRect] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return maps.Clone(sess.rect), nil
	})
	s.handlers[command.SetWindowRect] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		for k, v := range c.Body {
			if v != nil {
				sess.rect[k] = v
			}
		}
		return maps.Clone(sess.rect), nil
	})
	s.handlers[command.GetWindowSize] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return map[string]any{"width": sess.rect["width"], "height": sess.rect["height"]}, nil
	})
	s.handlers[command.SetWindowSize] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		sess.rect["width"] = c.Body["width"]
		sess.rect["height"] = c.Body["height"]
		return nil, nil
	})
	s.handlers[command.GetTimeouts] = withSession(func(sess *session, _ Call, _ *Server) (any, *Error) {
		return maps.Clone(sess.timeouts), nil
	})
	s.handlers[command.SetTimeouts] = withSession(func(sess *session, c Call, _ *Server) (any, *Error) {
		maps.Copy(sess.timeouts, c.Body)
		return nil, nil
	})
}

// toggleOption mimics a click on an <option>: multi selects toggle, single
// selects move the selection.
func toggleOption(opt *goquery.Selection) {
	sel := opt.Closest("select")
	if _, multi := sel.Attr("multiple"); multi {
		if _, on := opt.Attr("selected"); on {
			opt.RemoveAttr("selected")
		} else {
			opt.SetAttr("selected", "selected")
		}
		return
	}
	sel.Find("option").RemoveAttr("selected")
	opt.SetAttr("selected", "selected")
}

// domainMatches reports whether the host of pageURL is domain or one of its
// subdomains.
func domainMatches(pageURL, domain string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	domain = strings.TrimPrefix(domain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
