//go:build !linux && !darwin && !windows

package tun2proxy

import (
	"errors"
	"runtime"
)

var errUnsupportedOS = errors.New("traffic interception is not supported on " + runtime.GOOS)

func detectGateway() (gateway, error) {
	return gateway{}, errUnsupportedOS
}

func setupRoutes(string, gateway, []bypassRoute) (undoList, error) {
	return nil, errUnsupportedOS
}
