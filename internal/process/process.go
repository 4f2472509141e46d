package process

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ProcessInfo is a small struct representing a running process.
type ProcessInfo struct {
	PID  int
	Name string
}

// GetProcesses returns a list of running processes in a platform-agnostic format.
func GetProcesses() ([]ProcessInfo, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		out = append(out, ProcessInfo{PID: p.Pid(), Name: p.Executable()})
	}
	return out, nil
}

// FindOthersByName returns processes named like execName, excluding selfPID.
// Names are compared case-insensitively; go-ps truncates names on some
// platforms, so a prefix match of the truncated name is accepted too.
func FindOthersByName(procs []ProcessInfo, execName string, selfPID int) []ProcessInfo {
	var out []ProcessInfo
	want := strings.ToLower(execName)
	for _, p := range procs {
		if p.PID == selfPID || p.Name == "" {
			continue
		}
		name := strings.ToLower(p.Name)
		if name == want || (len(name) >= 15 && strings.HasPrefix(want, name)) {
			out = append(out, p)
		}
	}
	return out
}

// OtherInstances lists other running copies of the current executable.
func OtherInstances() ([]ProcessInfo, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	procs, err := GetProcesses()
	if err != nil {
		return nil, err
	}
	return FindOthersByName(procs, filepath.Base(exe), os.Getpid()), nil
}
