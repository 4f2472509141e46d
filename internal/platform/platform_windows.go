//go:build windows
// +build windows

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows"
)

// OpenFolder opens a folder in the default file manager
func OpenFolder(path string) error {
	return exec.Command("explorer", path).Start()
}

// OpenURL opens a URL in the default browser
func OpenURL(url string) error {
	return exec.Command("explorer", url).Start()
}

// IsElevated reports whether the process token is elevated.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// RestartElevated relaunches the current executable with the "runas" verb (UAC prompt).
func RestartElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("RestartElevated: cannot determine executable path: %w", err)
	}
	cwd, _ := os.Getwd()

	verbPtr, _ := windows.UTF16PtrFromString("runas")
	exePtr, _ := windows.UTF16PtrFromString(exe)
	cwdPtr, _ := windows.UTF16PtrFromString(cwd)
	argsPtr, _ := windows.UTF16PtrFromString(commandLine(os.Args[1:]))

	if err := windows.ShellExecute(0, verbPtr, exePtr, argsPtr, cwdPtr, windows.SW_NORMAL); err != nil {
		return fmt.Errorf("RestartElevated: ShellExecute failed: %w", err)
	}
	return nil
}

// commandLine quotes args for the new process's command line.
func commandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = windows.EscapeArg(a)
	}
	return strings.Join(quoted, " ")
}
