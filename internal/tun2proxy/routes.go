package tun2proxy

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"overtls-manager/internal/debuglog"
)

const (
	tunAddress = "198.18.0.1"
	tunMask    = "255.254.0.0"
)

// splitRoutes cover the whole IPv4 space while staying more specific than
// the default route, so removing them restores the original routing.
var splitRoutes = []string{"0.0.0.0/1", "128.0.0.0/1"}

// gateway is the physical egress route found before interception starts.
type gateway struct {
	iface   string
	address string
}

type bypassRoute struct {
	host bool
	cidr string
}

func (r bypassRoute) String() string {
	return r.cidr
}

// collectBypassRoutes turns IPs and CIDRs into unique IPv4 routes. Names,
// ranges and IPv6 entries are skipped.
func collectBypassRoutes(entries []string) []bypassRoute {
	seen := make(map[string]struct{})
	routes := make([]bypassRoute, 0, len(entries))
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var route bypassRoute
		if ip := net.ParseIP(raw); ip != nil {
			if ip.To4() == nil {
				continue
			}
			route = bypassRoute{host: true, cidr: ip.String() + "/32"}
		} else if _, ipNet, err := net.ParseCIDR(raw); err == nil {
			if ipNet.IP.To4() == nil {
				continue
			}
			route = bypassRoute{cidr: ipNet.String()}
		} else {
			debuglog.DebugLog("collectBypassRoutes: skipping %q", raw)
			continue
		}
		if _, ok := seen[route.cidr]; ok {
			continue
		}
		seen[route.cidr] = struct{}{}
		routes = append(routes, route)
	}
	return routes
}

func runCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("%s %s failed: %s", name, strings.Join(args, " "), trimmed)
	}
	debuglog.TraceLog("runCommand: %s %s", name, strings.Join(args, " "))
	return trimmed, nil
}

func runCommandErr(name string, args ...string) error {
	_, err := runCommand(name, args...)
	return err
}

// undoList collects cleanup steps and runs them in reverse order.
type undoList []func() error

func (u *undoList) push(step func() error) {
	*u = append(*u, step)
}

func (u undoList) run() error {
	var errs []error
	for i := len(u) - 1; i >= 0; i-- {
		if err := u[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
