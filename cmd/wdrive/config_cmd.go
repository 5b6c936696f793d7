package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/odvcencio/wdrive/pkg/config"
)

func runConfigCommand(_ context.Context, args []string) error {
	subCmd := "show"
	if len(args) > 0 {
		subCmd = args[0]
		args = args[1:]
	}

	switch subCmd {
	case "check":
		return runConfigCheck(args)
	case "show":
		return runConfigShow(args)
	case "diff":
		return runConfigDiff(args)
	case "path":
		return runConfigPath()
	default:
		return usageError("unknown config command: %s (use check, show, diff, or path)", subCmd)
	}
}

func configPaths() (user, project string) {
	home, _ := os.UserHomeDir()
	if home != "" {
		user = filepath.Join(home, ".wdrive", "config.yaml")
	}
	return user, filepath.Join(".wdrive", "config.yaml")
}

func runConfigShow(args []string) error {
	fs, cf := newFlagSet("config show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

// runConfigDiff prints the effective configuration as a unified diff
// against the built-in defaults.
func runConfigDiff(args []string) error {
	fs, cf := newFlagSet("config diff")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	text, err := configDiff(config.DefaultConfig(), cfg)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(stdout, "configuration matches the defaults")
		return nil
	}
	fmt.Fprint(stdout, text)
	return nil
}

func configDiff(base, effective *config.Config) (string, error) {
	a, err := base.YAML()
	if err != nil {
		return "", err
	}
	b, err := effective.YAML()
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "defaults",
		ToFile:   "effective",
		Context:  1,
	})
}

func runConfigPath() error {
	user, project := configPaths()
	if user != "" {
		fmt.Fprintln(stdout, user)
	}
	fmt.Fprintln(stdout, project)
	return nil
}

func runConfigCheck(args []string) error {
	fs, cf := newFlagSet("config check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Checking wdrive configuration...")
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Configuration files:")
	files := [][2]string{{"Explicit config:", cf.configPath}}
	if cf.configPath == "" {
		user, project := configPaths()
		files = [][2]string{{"User config:   ", user}, {"Project config:", project}}
	}
	for _, f := range files {
		if f[1] == "" {
			continue
		}
		if _, err := os.Stat(f[1]); err == nil {
			fmt.Fprintf(stdout, "  %s %s %s\n", mark(true), f[0], f[1])
		} else {
			fmt.Fprintf(stdout, "  - %s %s (not found)\n", f[0], f[1])
		}
	}
	fmt.Fprintln(stdout)

	cfg, err := cf.loadConfig()
	if err != nil {
		fmt.Fprintf(stdout, "  %s %v\n", mark(false), err)
		return err
	}
	printEndpoint(cfg)

	warnings := cfg.ValidationWarnings()
	if len(warnings) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Warnings:")
		for _, w := range warnings {
			fmt.Fprintf(stdout, "  ! %s\n", w)
		}
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration OK")
	return nil
}

// mark returns a check mark on terminals and plain words otherwise.
func mark(ok bool) string {
	f, isFile := stdout.(*os.File)
	fancy := isFile && term.IsTerminal(int(f.Fd()))
	switch {
	case ok && fancy:
		return "✓"
	case ok:
		return "ok"
	case fancy:
		return "✗"
	default:
		return "FAIL"
	}
}

func printEndpoint(cfg *config.Config) {
	fmt.Fprintln(stdout, "Endpoint:")
	if cfg.Remote.URL != "" {
		fmt.Fprintf(stdout, "  remote:  %s\n", cfg.Remote.URL)
	} else {
		fmt.Fprintf(stdout, "  driver:  %s (started locally on %s)\n", cfg.Driver.Path, cfg.Driver.Host)
	}
	fmt.Fprintf(stdout, "  browser: %s (headless=%t, %dx%d)\n", cfg.Session.Browser, cfg.Session.Headless, cfg.Session.Width, cfg.Session.Height)
	fmt.Fprintf(stdout, "  cookies: %s\n", cfg.CookiePath())
}
