// Command wdrive drives a browser through a WebDriver remote end from the
// shell: screenshots, page sources, titles and cookie profiles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/odvcencio/wdrive/pkg/config"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printHelp(stderr)
		return exitUsage
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return 0
	case "--help", "-h", "help":
		printHelp(stdout)
		return 0
	case "screenshot":
		return runCommand(ctx, runScreenshotCommand, args[1:])
	case "source":
		return runCommand(ctx, runSourceCommand, args[1:])
	case "title":
		return runCommand(ctx, runTitleCommand, args[1:])
	case "cookies":
		return runCommand(ctx, runCookiesCommand, args[1:])
	case "config":
		return runCommand(ctx, runConfigCommand, args[1:])
	case "doctor":
		// Alias for config check
		return runCommand(ctx, runConfigCommand, []string{"check"})
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(stderr, "Error: unknown flag: %s\n", args[0])
		} else {
			fmt.Fprintf(stderr, "Error: unknown command: %s\n", args[0])
		}
		fmt.Fprintln(stderr, "Run 'wdrive --help' for usage.")
		return exitUsage
	}
}

func runCommand(ctx context.Context, handler func(context.Context, []string) error, args []string) int {
	if err := handler(ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return 0
}

func printVersion() {
	fmt.Fprintf(stdout, "wdrive %s\n", version)
	fmt.Fprintf(stdout, "  commit: %s\n", commit)
	fmt.Fprintf(stdout, "  built:  %s\n", buildDate)
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `wdrive - drive a browser over the WebDriver protocol

Usage:
  wdrive <command> [flags] [args]

Commands:
  screenshot [-o dir] URL...        save a PNG of each page
  source [-selector css] URL        print the page source (or matching nodes)
  title URL...                      print the title of each page
  cookies export -profile NAME URL  save the cookies of URL to a profile
  cookies import -profile NAME URL  load a profile into a session on URL
  cookies list                      list stored profiles
  cookies delete -profile NAME      remove a profile
  config show|check|diff|path       inspect configuration
  version                           print version information

Common flags:
  -config PATH     config file (default ~/.wdrive/config.yaml, ./.wdrive/config.yaml)
  -remote URL      remote end; a local driver is started when empty
  -browser NAME    browser name override
  -log-level LVL   debug, info, warn or error
`)
}

// commonFlags are accepted by every command that opens a session.
type commonFlags struct {
	configPath string
	remote     string
	browser    string
	logLevel   string
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", "", "path to a config file")
	fs.StringVar(&cf.remote, "remote", "", "remote end URL; a local driver is started when empty")
	fs.StringVar(&cf.browser, "browser", "", "browser name override")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override")
	return fs, cf
}

// loadConfig reads the configuration and applies flag overrides on top.
func (cf *commonFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cf.configPath != "" {
		cfg, err = config.LoadFromPath(cf.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, withExitCode(fmt.Errorf("loading config: %w", err), exitUsage)
	}

	if cf.remote != "" {
		cfg.Remote.URL = cf.remote
	}
	if cf.browser != "" {
		cfg.Session.Browser = cf.browser
	}
	if cf.logLevel != "" {
		cfg.Logging.Level = cf.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(err, exitUsage)
	}
	return cfg, nil
}

func usageError(format string, args ...any) error {
	return withExitCode(fmt.Errorf(format, args...), exitUsage)
}
