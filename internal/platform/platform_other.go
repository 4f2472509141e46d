//go:build !linux && !darwin && !windows
// +build !linux,!darwin,!windows

package platform

import (
	"errors"
	"os"
)

var errElevationNotSupported = errors.New("elevation not supported on this platform")

// OpenFolder is not supported on this platform.
func OpenFolder(path string) error {
	return errors.New("OpenFolder: not supported on this platform")
}

// OpenURL is not supported on this platform.
func OpenURL(url string) error {
	return errors.New("OpenURL: not supported on this platform")
}

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// RestartElevated is not supported on this platform.
func RestartElevated() error {
	return errElevationNotSupported
}
