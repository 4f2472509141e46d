//go:build linux

package tun2proxy

import (
	"errors"
	"strings"
)

func detectGateway() (gateway, error) {
	out, err := runCommand("ip", "-4", "route", "show", "default")
	if err != nil {
		return gateway{}, err
	}
	return parseLinuxDefaultRoute(out)
}

// parseLinuxDefaultRoute reads "default via 192.168.1.1 dev eth0 ...".
func parseLinuxDefaultRoute(out string) (gateway, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "default" {
			continue
		}
		var gw gateway
		for i := 1; i+1 < len(fields); i++ {
			switch fields[i] {
			case "via":
				gw.address = fields[i+1]
			case "dev":
				gw.iface = fields[i+1]
			}
		}
		if gw.iface != "" {
			return gw, nil
		}
	}
	return gateway{}, errors.New("default route not found")
}

func setupRoutes(device string, gw gateway, bypass []bypassRoute) (undoList, error) {
	var undo undoList
	if err := runCommandErr("ip", "addr", "replace", tunAddress+"/15", "dev", device); err != nil {
		return undo, err
	}
	if err := runCommandErr("ip", "link", "set", "dev", device, "up"); err != nil {
		return undo, err
	}
	undo.push(func() error { return runCommandErr("ip", "link", "set", "dev", device, "down") })

	for _, r := range bypass {
		args := []string{"route", "replace", r.cidr}
		if gw.address != "" {
			args = append(args, "via", gw.address)
		}
		args = append(args, "dev", gw.iface)
		if err := runCommandErr("ip", args...); err != nil {
			return undo, err
		}
		cidr := r.cidr
		undo.push(func() error { return runCommandErr("ip", "route", "del", cidr) })
	}

	for _, cidr := range splitRoutes {
		if err := runCommandErr("ip", "route", "replace", cidr, "dev", device); err != nil {
			return undo, err
		}
		undo.push(func() error { return runCommandErr("ip", "route", "del", cidr, "dev", device) })
	}
	return undo, nil
}
