package constants

import "time"

// File names
const (
	AppDirName    = "overtls-manager"
	StateFileName = "config.json"
)

// Directory names
const (
	LogsDirName = "logs"
)

// Log file names
const (
	MainLogFileName = "overtls-manager.log"
)

// Application identity
const (
	AppID       = "com.overtls.manager"
	AppName     = "OverTLS Manager"
	KeyringName = "overtls-manager"
)

// Network constants
const (
	DefaultSTUNServer = "stun.l.google.com:19302"
)

// Defaults for system settings
const (
	DefaultListenHost  = "127.0.0.1"
	DefaultListenPort  = 5080
	DefaultPoolMaxSize = 100
	DefaultDNSAddr     = "8.8.8.8"
	DefaultMaxSessions = 200
	DefaultMTU         = 1500
	DefaultTunDevice   = "tun-overtls"
)

// Default window geometry
const (
	DefaultWindowX = 100
	DefaultWindowY = 100
	DefaultWindowW = 1024
	DefaultWindowH = 600
	MinWindowW     = 320
	MinWindowH     = 240
)

// Session and UI timings
const (
	// StopTimeout bounds how long Stop waits for the session goroutine.
	StopTimeout = 1 * time.Second

	// TickInterval is how often the GUI loop drains channels.
	TickInterval = 100 * time.Millisecond

	// MaxLogLines caps the on-screen log view.
	MaxLogLines = 1000
)

// Application version
// Can be overridden at build time using -ldflags="-X overtls-manager/internal/constants.AppVersion=..."
var (
	AppVersion = "v0.1.0"
)
