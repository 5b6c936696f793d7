package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/support"
)

const defaultParallel = 4

func runScreenshotCommand(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("screenshot")
	outDir := fs.String("o", ".", "directory for PNG files")
	parallel := fs.Int("parallel", defaultParallel, "maximum concurrent sessions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	urls := fs.Args()
	if len(urls) == 0 {
		return usageError("usage: wdrive screenshot [-o dir] URL...")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return withApp(ctx, cf, func(ctx context.Context, a *app) error {
		paths, err := a.visitAll(ctx, urls, *parallel, func(ctx context.Context, i int, s *webdriver.Session) (string, error) {
			path := filepath.Join(*outDir, screenshotName(i, urls[i]))
			if err := s.SaveScreenshot(ctx, path); err != nil {
				return "", err
			}
			return path, nil
		})
		printNonEmpty(paths)
		return err
	})
}

func runSourceCommand(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("source")
	selector := fs.String("selector", "", "print only the outer HTML of nodes matching this CSS selector")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("usage: wdrive source [-selector css] URL")
	}

	return withApp(ctx, cf, func(ctx context.Context, a *app) error {
		out, err := a.visit(ctx, fs.Arg(0), func(ctx context.Context, s *webdriver.Session) (string, error) {
			if *selector == "" {
				return s.PageSource(ctx)
			}
			doc, err := support.PageDocument(ctx, s)
			if err != nil {
				return "", err
			}
			return matchingHTML(doc, *selector)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
		return nil
	})
}

func runTitleCommand(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("title")
	parallel := fs.Int("parallel", defaultParallel, "maximum concurrent sessions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	urls := fs.Args()
	if len(urls) == 0 {
		return usageError("usage: wdrive title URL...")
	}

	return withApp(ctx, cf, func(ctx context.Context, a *app) error {
		titles, err := a.visitAll(ctx, urls, *parallel, func(ctx context.Context, i int, s *webdriver.Session) (string, error) {
			title, err := s.Title(ctx)
			if err != nil {
				return "", err
			}
			return urls[i] + "\t" + title, nil
		})
		printNonEmpty(titles)
		return err
	})
}

// withApp loads configuration, builds the app and closes it after fn.
func withApp(ctx context.Context, cf *commonFlags, fn func(context.Context, *app) error) error {
	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()
	return fn(ctx, a)
}

func matchingHTML(doc *goquery.Document, selector string) (string, error) {
	var parts []string
	var err error
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var html string
		html, err = goquery.OuterHtml(sel)
		if err != nil {
			return false
		}
		parts = append(parts, html)
		return true
	})
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: nothing matches %q", webdriver.ErrNoSuchElement, selector)
	}
	return strings.Join(parts, "\n"), nil
}

// screenshotName builds "NN-host.png" from the position and URL.
func screenshotName(i int, raw string) string {
	host := "page"
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			return r
		}
		return '-'
	}, host)
	return fmt.Sprintf("%02d-%s.png", i+1, slug)
}

func printNonEmpty(lines []string) {
	for _, line := range lines {
		if line != "" {
			fmt.Fprintln(stdout, line)
		}
	}
}
