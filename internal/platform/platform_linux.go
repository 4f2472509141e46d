//go:build linux
// +build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
)

// OpenFolder opens a folder in the default file manager
func OpenFolder(path string) error {
	return exec.Command("xdg-open", path).Start()
}

// OpenURL opens a URL in the default browser
func OpenURL(url string) error {
	return exec.Command("xdg-open", url).Start()
}

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// RestartElevated starts a new copy of the current executable through pkexec.
// The caller is expected to quit after a successful call.
func RestartElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("RestartElevated: cannot determine executable path: %w", err)
	}
	pkexec, err := exec.LookPath("pkexec")
	if err != nil {
		return fmt.Errorf("RestartElevated: pkexec not found: %w", err)
	}
	// pkexec drops the environment, the GUI needs the display variables back.
	args := []string{"env"}
	for _, key := range []string{"DISPLAY", "WAYLAND_DISPLAY", "XAUTHORITY", "XDG_RUNTIME_DIR", "DBUS_SESSION_BUS_ADDRESS"} {
		if v, ok := os.LookupEnv(key); ok {
			args = append(args, key+"="+v)
		}
	}
	args = append(args, exe)
	args = append(args, os.Args[1:]...)
	cmd := exec.Command(pkexec, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
