package chrome

import (
	"encoding/base64"
	"fmt"
	"maps"
	"os"
	"slices"
)

// OptionsKey is the vendor capability holding Chrome settings.
const OptionsKey = "goog:chromeOptions"

// Options describes how chromedriver should launch Chrome.
type Options struct {
	BrowserName         string
	Binary              string
	Args                []string
	Extensions          []string // base64 encoded .crx payloads
	Prefs               map[string]any
	DebuggerAddress     string
	Experimental        map[string]any
	AcceptInsecureCerts bool
	PageLoadStrategy    string
	// Capabilities is merged into the top level of the result.
	Capabilities map[string]any
}

// AddArgument appends command-line switches.
func (o *Options) AddArgument(args ...string) {
	o.Args = append(o.Args, args...)
}

// Headless adds the headless switch.
func (o *Options) Headless() {
	if !slices.Contains(o.Args, "--headless=new") {
		o.AddArgument("--headless=new")
	}
}

// AddExtensionFile reads a packed extension and embeds it.
func (o *Options) AddExtensionFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read extension: %w", err)
	}
	o.Extensions = append(o.Extensions, base64.StdEncoding.EncodeToString(data))
	return nil
}

// SetExperimental sets a chromeOptions key this type has no field for.
func (o *Options) SetExperimental(name string, value any) {
	if o.Experimental == nil {
		o.Experimental = make(map[string]any)
	}
	o.Experimental[name] = value
}

// ToCapabilities implements webdriver.CapabilitiesProvider.
func (o Options) ToCapabilities() map[string]any {
	caps := maps.Clone(o.Capabilities)
	if caps == nil {
		caps = make(map[string]any)
	}
	name := o.BrowserName
	if name == "" {
		name = "chrome"
	}
	caps["browserName"] = name
	if o.AcceptInsecureCerts {
		caps["acceptInsecureCerts"] = true
	}
	if o.PageLoadStrategy != "" {
		caps["pageLoadStrategy"] = o.PageLoadStrategy
	}

	chrome := make(map[string]any, len(o.Experimental)+5)
	maps.Copy(chrome, o.Experimental)
	if o.Binary != "" {
		chrome["binary"] = o.Binary
	}
	chrome["args"] = append([]string{}, o.Args...)
	chrome["extensions"] = append([]string{}, o.Extensions...)
	if len(o.Prefs) > 0 {
		chrome["prefs"] = maps.Clone(o.Prefs)
	}
	if o.DebuggerAddress != "" {
		chrome["debuggerAddress"] = o.DebuggerAddress
	}
	caps[OptionsKey] = chrome
	return caps
}
