package webdriver

import (
	"fmt"
	"strings"
)

// Capabilities is a desired-capabilities map.
type Capabilities map[string]any

// CapabilitiesProvider is implemented by browser option types.
type CapabilitiesProvider interface {
	ToCapabilities() map[string]any
}

// Standard W3C capability names.
var w3cCapabilityNames = map[string]bool{
	"acceptInsecureCerts":       true,
	"browserName":               true,
	"browserVersion":            true,
	"platformName":              true,
	"pageLoadStrategy":          true,
	"proxy":                     true,
	"setWindowRect":             true,
	"timeouts":                  true,
	"unhandledPromptBehavior":   true,
	"strictFileInteractability": true,
}

// Legacy capability names and their W3C replacements.
var legacyToW3C = map[string]string{
	"acceptSslCerts": "acceptInsecureCerts",
	"version":        "browserVersion",
	"platform":       "platformName",
}

const (
	firefoxOptionsKey = "moz:firefoxOptions"
	firefoxProfileKey = "firefox_profile"
)

// normalizeCapabilities validates caps and returns a private deep copy.
func normalizeCapabilities(caps any) (map[string]any, error) {
	var m map[string]any
	switch c := caps.(type) {
	case map[string]any:
		m = c
	case Capabilities:
		m = c
	case CapabilitiesProvider:
		m = c.ToCapabilities()
	}
	if m == nil {
		return nil, fmt.Errorf("%w: capabilities must be a map, got %T", ErrInvalidArgument, caps)
	}
	out, _ := deepCopy(m).(map[string]any)
	return out, nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = deepCopy(x)
		}
		return out
	case Capabilities:
		return deepCopy(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = deepCopy(x)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out
	}
	return v
}

// mergeProfile places an encoded profile where the remote end expects it.
func mergeProfile(caps map[string]any, encoded string) {
	if opts, ok := caps[firefoxOptionsKey].(map[string]any); ok {
		opts["profile"] = encoded
		return
	}
	caps[firefoxProfileKey] = encoded
}

// W3CCapabilities converts legacy desired capabilities into the W3C
// {alwaysMatch, firstMatch} form. caps is not modified.
func W3CCapabilities(caps map[string]any) map[string]any {
	caps, _ = deepCopy(caps).(map[string]any)
	if proxy, ok := caps["proxy"].(map[string]any); ok {
		if pt, ok := proxy["proxyType"].(string); ok && pt != "" {
			proxy["proxyType"] = strings.ToLower(pt)
		}
	}

	alwaysMatch := make(map[string]any)
	for k, v := range caps {
		if name, ok := legacyToW3C[k]; ok && truthy(v) {
			if s, ok := v.(string); ok && k == "platform" {
				v = strings.ToLower(s)
			}
			alwaysMatch[name] = v
		}
		if w3cCapabilityNames[k] || strings.Contains(k, ":") {
			alwaysMatch[k] = caps[k]
		}
	}

	if profile, ok := caps[firefoxProfileKey]; ok && truthy(profile) {
		opts, _ := alwaysMatch[firefoxOptionsKey].(map[string]any)
		if _, has := opts["profile"]; !has {
			merged := make(map[string]any, len(opts)+1)
			for k, v := range opts {
				merged[k] = v
			}
			merged["profile"] = profile
			alwaysMatch[firefoxOptionsKey] = merged
		}
	}

	return map[string]any{
		"firstMatch":  []any{map[string]any{}},
		"alwaysMatch": alwaysMatch,
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}
