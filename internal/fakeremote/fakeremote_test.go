package fakeremote

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/command"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

const indexHTML = `<html><head><title>Fake Index</title></head><body>
<h1 id="heading">Welcome</h1>
<form><input name="q" value="go"><input name="off" disabled></form>
<ul class="items"><li>one</li><li>two</li></ul>
<a href="https://example.test/next">Next page</a>
</body></html>`

const nextHTML = `<html><head><title>Next</title></head><body><p>second</p></body></html>`

func startSession(t *testing.T, dialect Dialect) (*Server, *webdriver.Session) {
	t.Helper()
	fake := New(
		WithDialect(dialect),
		WithPage("https://example.test/", indexHTML),
		WithPage("https://example.test/next", nextHTML),
	)
	srv := fake.Start()
	t.Cleanup(srv.Close)

	ex, err := webdriver.NewExecutor(srv.URL, transport.New())
	require.NoError(t, err)
	s := webdriver.New(ex)
	require.NoError(t, s.Start(context.Background(), map[string]any{"browserName": "fake"}))
	t.Cleanup(func() { _ = s.Quit(context.Background()) })
	return fake, s
}

func TestSessionAgainstFake(t *testing.T) {
	for name, dialect := range map[string]Dialect{"w3c": W3C, "legacy": Legacy} {
		t.Run(name, func(t *testing.T) {
			fake, s := startSession(t, dialect)
			ctx := context.Background()

			assert.Equal(t, dialect == W3C, s.W3C())
			assert.NotEmpty(t, s.ID())
			assert.Equal(t, []string{s.ID()}, fake.SessionIDs())
			assert.Equal(t, "fake", s.Capabilities()["browserName"])

			require.NoError(t, s.Get(ctx, "https://example.test/"))
			title, err := s.Title(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Fake Index", title)

			heading, err := s.FindElement(ctx, webdriver.ByID, "heading")
			require.NoError(t, err)
			text, err := heading.Text(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Welcome", text)

			items, err := s.FindElements(ctx, webdriver.ByCSSSelector, ".items li")
			require.NoError(t, err)
			assert.Len(t, items, 2)

			list, err := s.FindElement(ctx, webdriver.ByClassName, "items")
			require.NoError(t, err)
			children, err := list.FindElements(ctx, webdriver.ByTagName, "li")
			require.NoError(t, err)
			assert.Len(t, children, 2)

			_, err = s.FindElement(ctx, webdriver.ByID, "missing")
			assert.ErrorIs(t, err, webdriver.ErrNoSuchElement)

			link, err := s.FindElement(ctx, webdriver.ByLinkText, "Next page")
			require.NoError(t, err)
			require.NoError(t, link.Click(ctx))
			url, err := s.CurrentURL(ctx)
			require.NoError(t, err)
			assert.Equal(t, "https://example.test/next", url)

			require.NoError(t, s.Back(ctx))
			title, err = s.Title(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Fake Index", title)
		})
	}
}

func TestSendKeysAgainstFake(t *testing.T) {
	_, s := startSession(t, Legacy)
	ctx := context.Background()
	require.NoError(t, s.Get(ctx, "https://example.test/"))

	input, err := s.FindElement(ctx, webdriver.ByName, "q")
	require.NoError(t, err)
	require.NoError(t, input.SendKeys(ctx, "pher"))
	v, ok, err := input.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gopher", v)

	off, err := s.FindElement(ctx, webdriver.ByName, "off")
	require.NoError(t, err)
	assert.ErrorIs(t, off.SendKeys(ctx, "x"), webdriver.ErrElementNotInteractable)
	enabled, err := off.IsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestCookiesAgainstFake(t *testing.T) {
	for name, dialect := range map[string]Dialect{"w3c": W3C, "legacy": Legacy} {
		t.Run(name, func(t *testing.T) {
			_, s := startSession(t, dialect)
			ctx := context.Background()

			require.NoError(t, s.AddCookie(ctx, webdriver.Cookie{Name: "sid", Value: "1", Path: "/"}))
			require.NoError(t, s.AddCookie(ctx, webdriver.Cookie{Name: "theme", Value: "dark"}))

			c, err := s.Cookie(ctx, "sid")
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, "1", c.Value)

			missing, err := s.Cookie(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.DeleteCookie(ctx, "sid"))
			all, err := s.Cookies(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "theme", all[0].Name)

			require.NoError(t, s.DeleteAllCookies(ctx))
			all, err = s.Cookies(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestScriptAndScreenshotAgainstFake(t *testing.T) {
	fake, s := startSession(t, W3C)
	ctx := context.Background()
	require.NoError(t, s.Get(ctx, "https://example.test/"))

	heading, err := s.FindElement(ctx, webdriver.ByID, "heading")
	require.NoError(t, err)
	fake.HandleScript(func(script string, args []any) (any, *Error) {
		if len(args) != 1 {
			return nil, Errorf("javascript error", "want one argument")
		}
		return map[string]any{"echo": args[0], "script": script}, nil
	})

	v, err := s.ExecuteScript(ctx, "return {echo: arguments[0]}", heading)
	require.NoError(t, err)
	echoed := v.(map[string]any)["echo"]
	require.IsType(t, &webdriver.Element{}, echoed)
	assert.True(t, heading.Equal(echoed.(*webdriver.Element)))

	_, err = s.ExecuteScript(ctx, "return 1")
	assert.ErrorIs(t, err, webdriver.ErrJavascript)

	png, err := s.ScreenshotPNG(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(ScreenshotPNG, png))
}

func TestQuitRemovesSession(t *testing.T) {
	fake, s := startSession(t, W3C)
	require.NoError(t, s.Quit(context.Background()))
	assert.Empty(t, fake.SessionIDs())
	assert.Equal(t, 1, fake.CallCount(command.Quit))
}

func TestUnknownSessionAndRoute(t *testing.T) {
	fake := New()
	srv := fake.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/session/nope/title")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/not/a/route")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOverrideHandler(t *testing.T) {
	fake, s := startSession(t, W3C)
	fake.Handle(command.GetTitle, func(*Server, Call) (any, *Error) {
		return "overridden", nil
	})

	title, err := s.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "overridden", title)
}
