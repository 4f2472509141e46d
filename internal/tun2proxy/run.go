package tun2proxy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xjasonlyu/tun2socks/v2/engine"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
)

// ErrBusy is returned when another interception run is active. The engine is
// process-global, so only one run may exist at a time.
var ErrBusy = errors.New("tun2proxy: interception is already running")

var (
	engineMu     sync.Mutex
	engineActive bool
)

// Run captures traffic until ctx is cancelled. Routes added for the run are
// removed before it returns.
func Run(ctx context.Context, args Args) error {
	args = args.Clone()
	args.Normalize()
	if err := args.Validate(); err != nil {
		return err
	}

	engineMu.Lock()
	if engineActive {
		engineMu.Unlock()
		return ErrBusy
	}
	engineActive = true
	engineMu.Unlock()
	defer func() {
		engineMu.Lock()
		engineActive = false
		engineMu.Unlock()
	}()

	gw, err := detectGateway()
	if err != nil {
		return fmt.Errorf("Run: cannot detect default route: %w", err)
	}
	if args.DNS == DNSDirect {
		args.AddBypass(args.DNSAddr)
	}
	bypass := collectBypassRoutes(args.Bypass)
	debuglog.InfoLog("Run: intercepting on %s via %s (gateway %s %s), dns %s %s, %d bypass routes",
		constants.DefaultTunDevice, args.Proxy, gw.iface, gw.address, args.DNS, args.DNSAddr, len(bypass))

	engine.Insert(&engine.Key{
		MTU:       constants.DefaultMTU,
		Proxy:     args.Proxy,
		Device:    constants.DefaultTunDevice,
		Interface: gw.iface,
		LogLevel:  engineLogLevel(),
	})
	// engine.Start exits the process when the device cannot be created, so
	// elevation is checked by the caller before a run is started.
	engine.Start()
	defer engine.Stop()

	undo, err := setupRoutes(constants.DefaultTunDevice, gw, bypass)
	if err != nil {
		if cleanupErr := undo.run(); cleanupErr != nil {
			debuglog.WarnLog("Run: route cleanup after failure: %v", cleanupErr)
		}
		return fmt.Errorf("Run: failed to configure routes: %w", err)
	}
	defer func() {
		if err := undo.run(); err != nil {
			debuglog.WarnLog("Run: route cleanup: %v", err)
		}
	}()

	<-ctx.Done()
	debuglog.DebugLog("Run: interception stopping")
	return nil
}

// engineLogLevel maps the manager's log level to the engine's names.
func engineLogLevel() string {
	logger := debuglog.Current()
	switch {
	case logger == nil:
		return "warn"
	case logger.Enabled(debuglog.LevelTrace, "tun2socks"):
		return "debug"
	case logger.Enabled(debuglog.LevelInfo, "tun2socks"):
		return "info"
	case logger.Enabled(debuglog.LevelWarn, "tun2socks"):
		return "warn"
	default:
		return "error"
	}
}
