package webdriver

import (
	"context"
	"fmt"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// ConnectionType is the network connection bitmask used by mobile drivers.
type ConnectionType int

const (
	ConnectionNone         ConnectionType = 0
	ConnectionAirplaneMode ConnectionType = 1
	ConnectionWifi         ConnectionType = 2
	ConnectionData         ConnectionType = 4
	ConnectionAll          ConnectionType = 6
)

func (c ConnectionType) AirplaneMode() bool { return c&ConnectionAirplaneMode != 0 }
func (c ConnectionType) Wifi() bool         { return c&ConnectionWifi != 0 }
func (c ConnectionType) Data() bool         { return c&ConnectionData != 0 }

// Mobile groups commands only mobile drivers implement.
type Mobile struct {
	s *Session
}

// Mobile returns the mobile command group for s.
func (s *Session) Mobile() Mobile {
	return Mobile{s: s}
}

func asConnection(v any) (ConnectionType, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: expected connection mask, got %T", ErrProtocol, v)
	}
	return ConnectionType(int(n)), nil
}

func (m Mobile) NetworkConnection(ctx context.Context) (ConnectionType, error) {
	v, err := m.s.value(ctx, command.GetNetworkConnection, nil)
	if err != nil {
		return 0, err
	}
	return asConnection(v)
}

// SetNetworkConnection applies mask and returns the resulting state.
func (m Mobile) SetNetworkConnection(ctx context.Context, mask ConnectionType) (ConnectionType, error) {
	v, err := m.s.value(ctx, command.SetNetworkConnection, map[string]any{
		"name":       "network_connection",
		"parameters": map[string]any{"type": int(mask)},
	})
	if err != nil {
		return 0, err
	}
	return asConnection(v)
}

// Context returns the current context name, e.g. NATIVE_APP or WEBVIEW_1.
func (m Mobile) Context(ctx context.Context) (string, error) {
	v, err := m.s.value(ctx, command.CurrentContextHandle, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (m Mobile) Contexts(ctx context.Context) ([]string, error) {
	v, err := m.s.value(ctx, command.ContextHandles, nil)
	if err != nil {
		return nil, err
	}
	return asStrings(v)
}

func (m Mobile) SetContext(ctx context.Context, name string) error {
	_, err := m.s.Execute(ctx, command.SwitchToContext, map[string]any{"name": name})
	return err
}
