package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the wdrive configuration.
type Config struct {
	Remote  RemoteConfig  `yaml:"remote"`
	Driver  DriverConfig  `yaml:"driver"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Cookies CookieConfig  `yaml:"cookies"`
}

// RemoteConfig describes how to reach a running remote end. When URL is
// empty a local driver is started from DriverConfig.
type RemoteConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRedirects int           `yaml:"max_redirects"`
	RateLimit    float64       `yaml:"rate_limit"`
	RateBurst    int           `yaml:"rate_burst"`
	UserAgent    string        `yaml:"user_agent"`
	KeepAlive    bool          `yaml:"keep_alive"`
	LogRequests  bool          `yaml:"log_requests"`
	LogBodies    bool          `yaml:"log_bodies"`
}

// DriverConfig describes a locally launched driver executable.
type DriverConfig struct {
	Path         string        `yaml:"path"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Args         []string      `yaml:"args"`
	LogPath      string        `yaml:"log_path"`
	StartTimeout time.Duration `yaml:"start_timeout"`
}

// SessionConfig shapes the capabilities and setup of new sessions.
type SessionConfig struct {
	Browser         string         `yaml:"browser"`
	Headless        bool           `yaml:"headless"`
	BrowserArgs     []string       `yaml:"browser_args"`
	Width           int            `yaml:"width"`
	Height          int            `yaml:"height"`
	PageLoadTimeout time.Duration  `yaml:"page_load_timeout"`
	ImplicitWait    time.Duration  `yaml:"implicit_wait"`
	ScriptTimeout   time.Duration  `yaml:"script_timeout"`
	Capabilities    map[string]any `yaml:"capabilities"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// CookieConfig locates the cookie store.
type CookieConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			Timeout:      2 * time.Minute,
			MaxRedirects: 10,
			KeepAlive:    true,
			UserAgent:    "wdrive",
		},
		Driver: DriverConfig{
			Path:         "chromedriver",
			Host:         "127.0.0.1",
			StartTimeout: 20 * time.Second,
		},
		Session: SessionConfig{
			Browser:  "chrome",
			Headless: true,
			Width:    1280,
			Height:   720,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
		Tracing: TracingConfig{
			ServiceName: "wdrive",
		},
		Cookies: CookieConfig{
			Path: "~/.wdrive/cookies.db",
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, ~/.wdrive/config.yaml, ./.wdrive/config.yaml, then environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configEnv := loadConfigEnvVars()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".wdrive", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectConfigPath := filepath.Join(".", ".wdrive", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := applyEnvOverrides(cfg, configEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	configEnv := loadConfigEnvVars()

	if err := loadAndMerge(cfg, expandHomeDir(path)); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg, configEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envLookup prefers the process environment over ~/.wdrive/config.env.
type envLookup map[string]string

func (e envLookup) get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e[key]
}

func (e envLookup) bool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(e.get(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// applyEnvOverrides applies WDRIVE_* environment variable overrides
func applyEnvOverrides(cfg *Config, configEnv map[string]string) error {
	env := envLookup(configEnv)

	if v := env.get("WDRIVE_REMOTE_URL"); v != "" {
		cfg.Remote.URL = v
	}
	if v := env.get("WDRIVE_USER_AGENT"); v != "" {
		cfg.Remote.UserAgent = v
	}
	if v := env.get("WDRIVE_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("WDRIVE_RATE_LIMIT: %w", err)
		}
		cfg.Remote.RateLimit = limit
	}
	if v := env.get("WDRIVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WDRIVE_TIMEOUT: %w", err)
		}
		cfg.Remote.Timeout = d
	}
	if val, ok := env.bool("WDRIVE_LOG_REQUESTS"); ok {
		cfg.Remote.LogRequests = val
	}

	if v := env.get("WDRIVE_DRIVER_PATH"); v != "" {
		cfg.Driver.Path = v
	}
	if v := env.get("WDRIVE_DRIVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WDRIVE_DRIVER_PORT: %w", err)
		}
		cfg.Driver.Port = port
	}

	if v := env.get("WDRIVE_BROWSER"); v != "" {
		cfg.Session.Browser = v
	}
	if val, ok := env.bool("WDRIVE_HEADLESS"); ok {
		cfg.Session.Headless = val
	}
	if v := env.get("WDRIVE_BROWSER_ARGS"); v != "" {
		cfg.Session.BrowserArgs = splitCommaList(v)
	}

	if v := env.get("WDRIVE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env.get("WDRIVE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := env.get("WDRIVE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if val, ok := env.bool("WDRIVE_TRACING"); ok {
		cfg.Tracing.Enabled = val
	}
	if v := env.get("WDRIVE_COOKIE_DB"); v != "" {
		cfg.Cookies.Path = v
	}
	return nil
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote.URL) != "" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil {
			return fmt.Errorf("invalid remote url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid remote url: %s (scheme must be http or https)", c.Remote.URL)
		}
	} else if strings.TrimSpace(c.Driver.Path) == "" {
		return fmt.Errorf("either remote.url or driver.path must be set")
	}

	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	if c.Remote.MaxRedirects < 0 {
		return fmt.Errorf("remote.max_redirects must not be negative")
	}
	if c.Remote.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit must not be negative")
	}
	if c.Driver.Port < 0 || c.Driver.Port > 65535 {
		return fmt.Errorf("invalid driver.port: %d", c.Driver.Port)
	}
	if c.Session.Width < 0 || c.Session.Height < 0 {
		return fmt.Errorf("session width and height must not be negative")
	}

	validBrowsers := map[string]bool{
		"chrome":  true,
		"firefox": true,
		"edge":    true,
		"safari":  true,
	}
	if !validBrowsers[strings.ToLower(c.Session.Browser)] {
		return fmt.Errorf("invalid browser: %s (valid: chrome, firefox, edge, safari)", c.Session.Browser)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, text)", c.Logging.Format)
	}

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Addr) == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.ServiceName) == "" {
		return fmt.Errorf("tracing.service_name is required when tracing is enabled")
	}
	return nil
}

// ValidationWarnings reports settings that are valid but probably not
// what the user meant.
func (c *Config) ValidationWarnings() []string {
	var warnings []string

	if u, err := url.Parse(c.Remote.URL); err == nil && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			warnings = append(warnings, "SECURITY: remote.url embeds a password. Consider setting WDRIVE_REMOTE_URL in the environment instead.")
		}
	}
	if c.Remote.URL != "" && c.Driver.Port != 0 {
		warnings = append(warnings, "driver.port is ignored because remote.url is set")
	}
	if c.Session.Headless && strings.EqualFold(c.Session.Browser, "safari") {
		warnings = append(warnings, "safari has no headless mode; session.headless is ignored")
	}
	if c.Remote.LogBodies && !c.Remote.LogRequests {
		warnings = append(warnings, "remote.log_bodies has no effect without remote.log_requests")
	}
	return warnings
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// CookiePath returns the cookie store path with ~ expanded.
func (c *Config) CookiePath() string {
	return expandHomeDir(c.Cookies.Path)
}

func loadConfigEnvVars() map[string]string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}

	path := filepath.Join(home, ".wdrive", "config.env")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	vars := make(map[string]string)
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	return vars
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
