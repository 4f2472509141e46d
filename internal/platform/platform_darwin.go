//go:build darwin
// +build darwin

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// OpenFolder opens a folder in the default file manager
func OpenFolder(path string) error {
	return exec.Command("open", path).Start()
}

// OpenURL opens a URL in the default browser
func OpenURL(url string) error {
	return exec.Command("open", url).Start()
}

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// RestartElevated asks for the administrator password and starts a new copy of
// the current executable as root in the background.
func RestartElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("RestartElevated: cannot determine executable path: %w", err)
	}
	quoted := []string{strconv.Quote(exe)}
	for _, a := range os.Args[1:] {
		quoted = append(quoted, strconv.Quote(a))
	}
	shell := strings.Join(quoted, " ") + " > /dev/null 2>&1 &"
	script := fmt.Sprintf("do shell script %s with administrator privileges", strconv.Quote(shell))
	return exec.Command("osascript", "-e", script).Run()
}
