//go:build darwin

package tun2proxy

import (
	"errors"
	"strings"
)

func detectGateway() (gateway, error) {
	out, err := runCommand("route", "-n", "get", "default")
	if err != nil {
		return gateway{}, err
	}
	var gw gateway
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "interface:"); ok {
			gw.iface = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "gateway:"); ok {
			gw.address = strings.TrimSpace(v)
		}
	}
	if gw.iface == "" || gw.address == "" {
		return gateway{}, errors.New("default route not found in route output")
	}
	return gw, nil
}

func setupRoutes(device string, gw gateway, bypass []bypassRoute) (undoList, error) {
	var undo undoList
	if err := runCommandErr("ifconfig", device, "inet", tunAddress, tunAddress, "up"); err != nil {
		return undo, err
	}
	undo.push(func() error { return runCommandErr("ifconfig", device, "down") })

	for _, r := range bypass {
		kind := "-net"
		if r.host {
			kind = "-host"
		}
		target := strings.TrimSuffix(r.cidr, "/32")
		_ = runCommandErr("route", "-n", "delete", kind, target)
		if err := runCommandErr("route", "-n", "add", kind, target, gw.address); err != nil {
			return undo, err
		}
		undo.push(func() error { return runCommandErr("route", "-n", "delete", kind, target) })
	}

	for _, cidr := range splitRoutes {
		_ = runCommandErr("route", "-n", "delete", "-net", cidr, "-interface", device)
		if err := runCommandErr("route", "-n", "add", "-net", cidr, "-interface", device); err != nil {
			return undo, err
		}
		undo.push(func() error { return runCommandErr("route", "-n", "delete", "-net", cidr, "-interface", device) })
	}
	return undo, nil
}
