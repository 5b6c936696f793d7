package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Strings and numbers win when
// non-zero; booleans win when the key is present in raw.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if strings.TrimSpace(override.Remote.URL) != "" {
		base.Remote.URL = override.Remote.URL
	}
	if override.Remote.Timeout != 0 {
		base.Remote.Timeout = override.Remote.Timeout
	}
	if fieldSet(raw, "remote", "max_redirects") {
		base.Remote.MaxRedirects = override.Remote.MaxRedirects
	}
	if override.Remote.RateLimit != 0 {
		base.Remote.RateLimit = override.Remote.RateLimit
	}
	if override.Remote.RateBurst != 0 {
		base.Remote.RateBurst = override.Remote.RateBurst
	}
	if override.Remote.UserAgent != "" {
		base.Remote.UserAgent = override.Remote.UserAgent
	}
	if fieldSet(raw, "remote", "keep_alive") {
		base.Remote.KeepAlive = override.Remote.KeepAlive
	}
	if fieldSet(raw, "remote", "log_requests") {
		base.Remote.LogRequests = override.Remote.LogRequests
	}
	if fieldSet(raw, "remote", "log_bodies") {
		base.Remote.LogBodies = override.Remote.LogBodies
	}

	if strings.TrimSpace(override.Driver.Path) != "" {
		base.Driver.Path = override.Driver.Path
	}
	if override.Driver.Host != "" {
		base.Driver.Host = override.Driver.Host
	}
	if override.Driver.Port != 0 {
		base.Driver.Port = override.Driver.Port
	}
	if override.Driver.Args != nil {
		base.Driver.Args = slices.Clone(override.Driver.Args)
	}
	if override.Driver.LogPath != "" {
		base.Driver.LogPath = override.Driver.LogPath
	}
	if override.Driver.StartTimeout != 0 {
		base.Driver.StartTimeout = override.Driver.StartTimeout
	}

	if override.Session.Browser != "" {
		base.Session.Browser = override.Session.Browser
	}
	if fieldSet(raw, "session", "headless") {
		base.Session.Headless = override.Session.Headless
	}
	if override.Session.BrowserArgs != nil {
		base.Session.BrowserArgs = slices.Clone(override.Session.BrowserArgs)
	}
	if override.Session.Width != 0 {
		base.Session.Width = override.Session.Width
	}
	if override.Session.Height != 0 {
		base.Session.Height = override.Session.Height
	}
	if override.Session.PageLoadTimeout != 0 {
		base.Session.PageLoadTimeout = override.Session.PageLoadTimeout
	}
	if override.Session.ImplicitWait != 0 {
		base.Session.ImplicitWait = override.Session.ImplicitWait
	}
	if override.Session.ScriptTimeout != 0 {
		base.Session.ScriptTimeout = override.Session.ScriptTimeout
	}
	if len(override.Session.Capabilities) > 0 {
		if base.Session.Capabilities == nil {
			base.Session.Capabilities = map[string]any{}
		}
		maps.Copy(base.Session.Capabilities, override.Session.Capabilities)
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if fieldSet(raw, "metrics", "enabled") {
		base.Metrics.Enabled = override.Metrics.Enabled
	}
	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}
	if fieldSet(raw, "tracing", "enabled") {
		base.Tracing.Enabled = override.Tracing.Enabled
	}
	if override.Tracing.ServiceName != "" {
		base.Tracing.ServiceName = override.Tracing.ServiceName
	}

	if override.Cookies.Path != "" {
		base.Cookies.Path = override.Cookies.Path
	}
}

func fieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}
