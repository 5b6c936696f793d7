package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/odvcencio/wdrive/pkg/config"
	"github.com/odvcencio/wdrive/pkg/cookiestore"
	"github.com/odvcencio/wdrive/pkg/webdriver"
)

func runCookiesCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("usage: wdrive cookies export|import|list|delete [flags]")
	}
	sub, rest := args[0], args[1:]

	fs, cf := newFlagSet("cookies " + sub)
	profile := fs.String("profile", "default", "cookie profile name")
	dbPath := fs.String("db", "", "cookie database (default from config)")
	all := fs.Bool("all", false, "import: also try cookies stored for other sites")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	switch sub {
	case "export", "import":
		if fs.NArg() != 1 {
			return usageError("usage: wdrive cookies %s -profile NAME URL", sub)
		}
	case "list", "delete":
		if fs.NArg() != 0 {
			return usageError("usage: wdrive cookies %s", sub)
		}
	default:
		return usageError("unknown cookies command: %s (use export, import, list, or delete)", sub)
	}

	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	store, err := openCookieStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "list":
		profiles, err := store.Profiles(ctx)
		if err != nil {
			return err
		}
		for _, p := range profiles {
			fmt.Fprintln(stdout, p)
		}
		return nil
	case "delete":
		n, err := store.Delete(ctx, *profile)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %d cookies from %s\n", n, *profile)
		return nil
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	target := fs.Arg(0)
	_, err = a.visit(ctx, target, func(ctx context.Context, s *webdriver.Session) (string, error) {
		if sub == "export" {
			n, err := store.Export(ctx, s, *profile)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(stdout, "exported %d cookies from %s to %s\n", n, target, *profile)
			return "", nil
		}
		cookies, err := store.Load(ctx, *profile)
		if err != nil {
			return "", err
		}
		skipped := 0
		if !*all {
			kept := cookiestore.ForSite(cookies, target)
			skipped = len(cookies) - len(kept)
			cookies = kept
		}
		n, err := cookiestore.AddCookies(ctx, s, cookies, a.logger.WithSession(s.ID()).Logger)
		fmt.Fprintf(stdout, "imported %d cookies from %s into %s", n, *profile, target)
		if skipped > 0 {
			fmt.Fprintf(stdout, " (skipped %d for other sites)", skipped)
		}
		fmt.Fprintln(stdout)
		return "", err
	})
	return err
}

func openCookieStore(cfg *config.Config, override string) (*cookiestore.Store, error) {
	path := cfg.CookiePath()
	if strings.TrimSpace(override) != "" {
		path = override
	}
	store, err := cookiestore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie store: %w", err)
	}
	return store, nil
}
