//go:build windows

package tun2proxy

import (
	"errors"
	"net"
	"strings"
)

func detectGateway() (gateway, error) {
	out, err := runCommand("powershell", "-NoProfile", "-Command",
		"(Get-NetRoute -DestinationPrefix '0.0.0.0/0' | Sort-Object RouteMetric | Select-Object -First 1 | ForEach-Object { $_.NextHop + ' ' + $_.InterfaceAlias })")
	if err != nil {
		return gateway{}, err
	}
	fields := strings.SplitN(strings.TrimSpace(out), " ", 2)
	if len(fields) != 2 || net.ParseIP(fields[0]) == nil {
		return gateway{}, errors.New("default route not found")
	}
	return gateway{address: fields[0], iface: fields[1]}, nil
}

func setupRoutes(device string, gw gateway, bypass []bypassRoute) (undoList, error) {
	var undo undoList
	if err := runCommandErr("netsh", "interface", "ipv4", "set", "address", "name="+device, "static", tunAddress, tunMask); err != nil {
		return undo, err
	}

	for _, r := range bypass {
		ip, ipNet, err := net.ParseCIDR(r.cidr)
		if err != nil {
			continue
		}
		target, mask := ip.String(), net.IP(ipNet.Mask).String()
		if err := runCommandErr("route", "add", target, "mask", mask, gw.address); err != nil {
			return undo, err
		}
		undo.push(func() error { return runCommandErr("route", "delete", target, "mask", mask) })
	}

	for _, cidr := range splitRoutes {
		ip, ipNet, _ := net.ParseCIDR(cidr)
		target, mask := ip.String(), net.IP(ipNet.Mask).String()
		if err := runCommandErr("route", "add", target, "mask", mask, tunAddress); err != nil {
			return undo, err
		}
		undo.push(func() error { return runCommandErr("route", "delete", target, "mask", mask, tunAddress) })
	}
	return undo, nil
}
