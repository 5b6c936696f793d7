// Package chrome adds the chromedriver vendor commands and a driver that
// manages a local chromedriver process.
package chrome

import (
	"net/http"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

const (
	LaunchApp               = "launchApp"
	SetNetworkConditions    = "setNetworkConditions"
	GetNetworkConditions    = "getNetworkConditions"
	DeleteNetworkConditions = "deleteNetworkConditions"
	ExecuteCDPCommand       = "executeCdpCommand"
)

// Commands are the chromedriver extensions to the base catalog.
var Commands = map[string]command.Command{
	LaunchApp:               {Method: http.MethodPost, Path: "/session/{sessionId}/chromium/launch_app"},
	SetNetworkConditions:    {Method: http.MethodPost, Path: "/session/{sessionId}/chromium/network_conditions"},
	GetNetworkConditions:    {Method: http.MethodGet, Path: "/session/{sessionId}/chromium/network_conditions"},
	DeleteNetworkConditions: {Method: http.MethodDelete, Path: "/session/{sessionId}/chromium/network_conditions"},
	ExecuteCDPCommand:       {Method: http.MethodPost, Path: "/session/{sessionId}/goog/cdp/execute"},
}

// Catalog returns the base catalog extended with Commands.
func Catalog() *command.Catalog {
	return command.Base().With(Commands)
}
