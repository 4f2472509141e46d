package core

import "errors"

// Session and selection errors, checked with errors.Is.
var (
	ErrAlreadyRunning    = errors.New("a node is already running, stop it first")
	ErrNoSession         = errors.New("no running node")
	ErrStopTimeout       = errors.New("node did not finish in time and was abandoned")
	ErrStartCancelled    = errors.New("node was stopped before it started")
	ErrElevationRequired = errors.New("traffic interception requires administrator privileges")
	ErrNoSelection       = errors.New("no node selected")
	ErrNodeNotFound      = errors.New("selected node not found")
)
