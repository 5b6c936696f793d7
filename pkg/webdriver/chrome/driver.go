package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/odvcencio/wdrive/pkg/webdriver"
	"github.com/odvcencio/wdrive/pkg/webdriver/service"
	"github.com/odvcencio/wdrive/pkg/webdriver/transport"
)

// DefaultDriverPath is looked up on PATH when no service path is set.
const DefaultDriverPath = "chromedriver"

// Config describes how to reach chromedriver.
type Config struct {
	// RemoteURL targets an already running endpoint. When empty a local
	// chromedriver is started from Service.
	RemoteURL string
	Service   service.Config
	Options   Options

	Logger    *slog.Logger
	Transport []transport.Option
	Executor  []webdriver.ExecutorOption
	Session   []webdriver.Option
}

// Driver is a Chrome session with access to the chromedriver extensions.
type Driver struct {
	*webdriver.Session
	service *service.Service
}

// New starts (or connects to) chromedriver and opens a session.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var svc *service.Service
	baseURL := cfg.RemoteURL
	if baseURL == "" {
		scfg := cfg.Service
		if scfg.Path == "" {
			scfg.Path = DefaultDriverPath
		}
		if scfg.Logger == nil {
			scfg.Logger = logger
		}
		var err error
		svc, err = service.Start(ctx, scfg)
		if err != nil {
			return nil, err
		}
		baseURL = svc.URL()
	}

	topts := append([]transport.Option{}, cfg.Transport...)
	eopts := append([]webdriver.ExecutorOption{
		webdriver.WithCatalog(Catalog()),
		webdriver.WithExecutorLogger(logger),
	}, cfg.Executor...)
	executor, err := webdriver.NewExecutor(baseURL, transport.New(topts...), eopts...)
	if err != nil {
		if svc != nil {
			_ = svc.Stop()
		}
		return nil, err
	}

	sopts := append([]webdriver.Option{webdriver.WithLogger(logger)}, cfg.Session...)
	if svc != nil {
		sopts = append(sopts, webdriver.WithQuitHook(func(context.Context) error {
			return svc.Stop()
		}))
	}
	session := webdriver.New(executor, sopts...)
	if err := session.Start(ctx, cfg.Options); err != nil {
		// Quit releases the transport and runs the service stop hook.
		_ = session.Quit(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("chrome: %w", err)
	}
	return &Driver{Session: session, service: svc}, nil
}

// Service returns the managed chromedriver process, nil for remote URLs.
func (d *Driver) Service() *service.Service {
	return d.service
}

// LaunchApp starts a Chrome app by id.
func (d *Driver) LaunchApp(ctx context.Context, id string) error {
	_, err := d.Execute(ctx, LaunchApp, map[string]any{"id": id})
	return err
}

// NetworkConditions is the emulated network profile. Throughputs are in
// bytes per second, latency in milliseconds.
type NetworkConditions struct {
	Offline            bool `json:"offline"`
	Latency            int  `json:"latency"`
	DownloadThroughput int  `json:"download_throughput"`
	UploadThroughput   int  `json:"upload_throughput"`
}

// NetworkConditions returns the active emulation settings.
func (d *Driver) NetworkConditions(ctx context.Context) (NetworkConditions, error) {
	env, err := d.Execute(ctx, GetNetworkConditions, nil)
	if err != nil {
		return NetworkConditions{}, err
	}
	var nc NetworkConditions
	if err := remarshal(env.Value, &nc); err != nil {
		return NetworkConditions{}, err
	}
	return nc, nil
}

// SetNetworkConditions enables network emulation.
func (d *Driver) SetNetworkConditions(ctx context.Context, nc NetworkConditions) error {
	_, err := d.Execute(ctx, SetNetworkConditions, map[string]any{
		"network_conditions": map[string]any{
			"offline":             nc.Offline,
			"latency":             nc.Latency,
			"download_throughput": nc.DownloadThroughput,
			"upload_throughput":   nc.UploadThroughput,
		},
	})
	return err
}

// DeleteNetworkConditions turns emulation off.
func (d *Driver) DeleteNetworkConditions(ctx context.Context) error {
	_, err := d.Execute(ctx, DeleteNetworkConditions, nil)
	return err
}

// ExecuteCDP sends a raw DevTools protocol command and returns its result.
func (d *Driver) ExecuteCDP(ctx context.Context, cmd string, args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}
	env, err := d.Execute(ctx, ExecuteCDPCommand, map[string]any{"cmd": cmd, "params": args})
	if err != nil {
		return nil, err
	}
	if env.Value == nil {
		return map[string]any{}, nil
	}
	out, ok := env.Value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: cdp result is %T", webdriver.ErrProtocol, env.Value)
	}
	return out, nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", webdriver.ErrProtocol, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %v", webdriver.ErrProtocol, err)
	}
	return nil
}
