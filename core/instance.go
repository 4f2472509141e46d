package core

import (
	"time"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/process"
)

const instancePollInterval = 200 * time.Millisecond

// OtherInstanceRunning reports whether another copy of the manager is
// running. Listing failures count as "no".
func OtherInstanceRunning() bool {
	others, err := process.OtherInstances()
	if err != nil {
		debuglog.WarnLog("OtherInstanceRunning: error listing processes: %v", err)
		return false
	}
	for _, p := range others {
		debuglog.InfoLog("OtherInstanceRunning: found %s (pid %d)", p.Name, p.PID)
	}
	return len(others) > 0
}

// WaitForOtherInstances polls until no other copy runs or wait has passed,
// which covers the copy that restarted this one elevated and is still
// exiting. It reports whether another copy is still running.
func WaitForOtherInstances(wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		if !OtherInstanceRunning() {
			return false
		}
		if time.Now().After(deadline) {
			return true
		}
		time.Sleep(instancePollInterval)
	}
}
