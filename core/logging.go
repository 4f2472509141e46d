// Package core is the manager's application logic: the node list, the
// persisted state, the session runner and the controller that ties them to
// the GUI.
package core

import (
	"fmt"
	"os"

	"overtls-manager/internal/debuglog"
)

// logChannelSize bounds the records waiting for the GUI log view. When the
// view falls behind, new records are dropped from the view only; the log
// file still receives them.
const logChannelSize = 1024

// SetupLogger installs the process logger with a channel sink and starts
// the forwarder feeding the log view. An install failure is reported on
// stderr and otherwise ignored.
func SetupLogger(settings SystemSettings, notify func()) (*debuglog.Logger, *debuglog.Forwarder) {
	records := make(chan debuglog.Record, logChannelSize)
	level, ok := debuglog.ParseLevel(settings.LogLevel)
	if !ok {
		level = debuglog.LevelInfo
	}
	logger := debuglog.NewLogger(records, level)
	ApplyLogLevels(logger, settings)
	if err := debuglog.Install(logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to install logger: %v\n", err)
	}
	return logger, debuglog.StartForwarder(records, notify)
}
