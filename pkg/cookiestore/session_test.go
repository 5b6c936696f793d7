package cookiestore

import (
	"context"
	"errors"
	"testing"

	"github.com/odvcencio/wdrive/internal/fakeremote"
	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

func startSession(t *testing.T, dialect fakeremote.Dialect) *webdriver.Session {
	t.Helper()
	srv := fakeremote.New(
		fakeremote.WithDialect(dialect),
		fakeremote.WithPage("https://shop.test/", "<html><title>Shop</title></html>"),
	).Start()
	t.Cleanup(srv.Close)

	ex, err := webdriver.NewExecutor(srv.URL, transport.New())
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	s := webdriver.New(ex)
	if err := s.Start(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = s.Quit(context.Background()) })
	if err := s.Get(context.Background(), "https://shop.test/"); err != nil {
		t.Fatalf("get: %v", err)
	}
	return s
}

func TestExportImportAcrossSessions(t *testing.T) {
	for _, dialect := range []fakeremote.Dialect{fakeremote.W3C, fakeremote.Legacy} {
		store := newTestStore(t)
		ctx := context.Background()

		src := startSession(t, dialect)
		for _, c := range []webdriver.Cookie{
			{Name: "sid", Value: "abc", Domain: "shop.test", Path: "/"},
			{Name: "cart", Value: "3"},
		} {
			if err := src.AddCookie(ctx, c); err != nil {
				t.Fatalf("add cookie: %v", err)
			}
		}

		n, err := store.Export(ctx, src, "shop")
		if err != nil || n != 2 {
			t.Fatalf("export = %d, %v", n, err)
		}

		dst := startSession(t, dialect)
		n, err = store.Import(ctx, dst, "shop", nil)
		if err != nil || n != 2 {
			t.Fatalf("import = %d, %v", n, err)
		}
		got, err := dst.Cookie(ctx, "sid")
		if err != nil || got == nil || got.Value != "abc" {
			t.Fatalf("imported cookie = %+v, %v", got, err)
		}
	}
}

func TestImportReportsRejectedCookies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Replace(ctx, "mixed", []webdriver.Cookie{
		{Name: "ok", Value: "1", Domain: "shop.test"},
		{Name: "foreign", Value: "2", Domain: "elsewhere.test"},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	s := startSession(t, fakeremote.W3C)
	n, err := store.Import(ctx, s, "mixed", nil)
	if n != 1 {
		t.Fatalf("imported %d cookies, want 1", n)
	}
	if !errors.Is(err, webdriver.ErrDriver) {
		t.Fatalf("expected driver error for foreign cookie, got %v", err)
	}
	cookies, err := s.Cookies(ctx)
	if err != nil || len(cookies) != 1 || cookies[0].Name != "ok" {
		t.Fatalf("unexpected cookies after import: %+v %v", cookies, err)
	}
}
