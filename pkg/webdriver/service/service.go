// Package service launches a local driver executable such as chromedriver
// and waits until it accepts connections.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotExecutable = errors.New("service: driver executable not found")
	ErrStartTimeout  = errors.New("service: driver did not start listening")
)

// Config controls how the driver process is started.
type Config struct {
	Path         string
	Host         string
	Port         int // 0 picks a free port
	Args         []string
	Env          []string
	LogPath      string
	StartTimeout time.Duration
	StopTimeout  time.Duration
	Logger       *slog.Logger
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		StartTimeout: 20 * time.Second,
		StopTimeout:  5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	d.Path = c.Path
	d.Port = c.Port
	d.Args = c.Args
	d.Env = c.Env
	d.LogPath = c.LogPath
	d.Logger = c.Logger
	if strings.TrimSpace(c.Host) != "" {
		d.Host = c.Host
	}
	if c.StartTimeout > 0 {
		d.StartTimeout = c.StartTimeout
	}
	if c.StopTimeout > 0 {
		d.StopTimeout = c.StopTimeout
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// Service is a running driver process.
type Service struct {
	cfg      Config
	cmd      *exec.Cmd
	addr     string
	logFile  io.Closer
	waitDone chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Start launches the driver and blocks until its port accepts connections.
// The process is not tied to ctx; only the startup wait is.
func Start(ctx context.Context, cfg Config) (*Service, error) {
	cfg = cfg.withDefaults()
	path, err := exec.LookPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotExecutable, cfg.Path, err)
	}
	if cfg.Port == 0 {
		cfg.Port, err = FreePort(cfg.Host)
		if err != nil {
			return nil, err
		}
	}

	args := append(slices.Clone(cfg.Args), "--port="+strconv.Itoa(cfg.Port))
	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), cfg.Env...)

	s := &Service{
		cfg:      cfg,
		cmd:      cmd,
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		waitDone: make(chan struct{}),
	}
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open service log: %w", err)
		}
		cmd.Stdout = f
		cmd.Stderr = f
		s.logFile = f
	}

	if err := cmd.Start(); err != nil {
		s.closeLog()
		return nil, fmt.Errorf("start %s: %w", cfg.Path, err)
	}
	go func() {
		_ = cmd.Wait()
		close(s.waitDone)
	}()

	if err := s.waitReady(ctx); err != nil {
		_ = s.Stop()
		return nil, err
	}
	cfg.Logger.Info("driver service started",
		slog.String("path", path),
		slog.String("addr", s.addr),
		slog.Int("pid", cmd.Process.Pid))
	return s, nil
}

// URL is the base URL of the driver's WebDriver endpoint.
func (s *Service) URL() string {
	return "http://" + s.addr
}

// Addr is the host:port the driver listens on.
func (s *Service) Addr() string {
	return s.addr
}

// Running reports whether the process is still alive.
func (s *Service) Running() bool {
	select {
	case <-s.waitDone:
		return false
	default:
		return true
	}
}

func (s *Service) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.StartTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	var lastErr error
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.Running() {
			return fmt.Errorf("%w: %s exited early", ErrStartTimeout, s.cfg.Path)
		}
		conn, err := net.DialTimeout("tcp", s.addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("deadline reached")
	}
	return fmt.Errorf("%w on %s: %v", ErrStartTimeout, s.addr, lastErr)
}

// Stop interrupts the process and waits StopTimeout for it to exit, then
// kills it. Safe to call more than once.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	defer s.closeLog()
	if s.cmd.Process == nil || !s.Running() {
		return nil
	}
	// Interrupt is unsupported on windows; go straight to kill there.
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		if err := s.kill(); err != nil {
			return err
		}
	}
	select {
	case <-s.waitDone:
		s.cfg.Logger.Info("driver service stopped", slog.String("addr", s.addr))
		return nil
	case <-time.After(s.cfg.StopTimeout):
	}

	s.cfg.Logger.Warn("driver service ignored interrupt, killing",
		slog.String("addr", s.addr),
		slog.Duration("stop_timeout", s.cfg.StopTimeout))
	if err := s.kill(); err != nil {
		return err
	}
	select {
	case <-s.waitDone:
	case <-time.After(s.cfg.StopTimeout):
		return fmt.Errorf("service: %s did not exit within %s of kill", s.cfg.Path, s.cfg.StopTimeout)
	}
	s.cfg.Logger.Info("driver service killed", slog.String("addr", s.addr))
	return nil
}

func (s *Service) kill() error {
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s: %w", s.cfg.Path, err)
	}
	return nil
}

func (s *Service) closeLog() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// FreePort asks the kernel for an unused TCP port on host.
func FreePort(host string) (int, error) {
	if host == "" {
		host = "127.0.0.1"
	}
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
