package debuglog

import (
	"io"
)

// RunAndLog executes fn and logs a label-prefixed warning if it fails.
func RunAndLog(label string, fn func() error) {
	if err := fn(); err != nil {
		Log(callerOrigin(2), LevelWarn, "%s: %v", label, err)
	}
}

// CloseWithLog closes the provided io.Closer and logs an error with context if closing fails.
// Safe to call with a nil closer.
func CloseWithLog(name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		Log(callerOrigin(2), LevelWarn, "%s: %v", name, err)
	}
}
