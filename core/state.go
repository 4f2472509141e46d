package core

import (
	"maps"
	"net"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/tun2proxy"
)

// WindowState is the main window geometry.
type WindowState struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DefaultWindowState returns the geometry used on first start.
func DefaultWindowState() WindowState {
	return WindowState{
		X: constants.DefaultWindowX,
		Y: constants.DefaultWindowY,
		W: constants.DefaultWindowW,
		H: constants.DefaultWindowH,
	}
}

// SystemSettings are the manager-wide settings merged into every node
// before it runs.
type SystemSettings struct {
	ListenHost     string `json:"listen_host"`
	ListenPort     uint16 `json:"listen_port"`
	ListenUser     string `json:"listen_user,omitempty"`
	ListenPassword string `json:"listen_password,omitempty"`
	PoolMaxSize    int    `json:"pool_max_size"`
	CacheDNS       bool   `json:"cache_dns"`

	Tun2ProxyEnable *bool          `json:"tun2proxy_enable,omitempty"`
	Tun2Proxy       tun2proxy.Args `json:"tun2proxy"`

	LogLevel        string            `json:"log_level,omitempty"`
	ModuleLogLevels map[string]string `json:"module_log_levels,omitempty"`
}

// DefaultSystemSettings returns the settings of a fresh install.
// Interception starts enabled.
func DefaultSystemSettings() SystemSettings {
	enabled := true
	return SystemSettings{
		ListenHost:      constants.DefaultListenHost,
		ListenPort:      constants.DefaultListenPort,
		PoolMaxSize:     constants.DefaultPoolMaxSize,
		Tun2ProxyEnable: &enabled,
		Tun2Proxy:       tun2proxy.DefaultArgs(),
		LogLevel:        debuglog.LevelInfo.String(),
	}
}

// InterceptionEnabled reports whether runs also capture system traffic.
// An absent flag in a saved settings record means disabled.
func (s SystemSettings) InterceptionEnabled() bool {
	return s.Tun2ProxyEnable != nil && *s.Tun2ProxyEnable
}

// SetInterceptionEnabled stores the interception flag.
func (s *SystemSettings) SetInterceptionEnabled(enabled bool) {
	s.Tun2ProxyEnable = &enabled
}

// Clone returns a copy sharing no maps, slices or pointers.
func (s SystemSettings) Clone() SystemSettings {
	out := s
	if s.Tun2ProxyEnable != nil {
		v := *s.Tun2ProxyEnable
		out.Tun2ProxyEnable = &v
	}
	out.Tun2Proxy = s.Tun2Proxy.Clone()
	out.ModuleLogLevels = maps.Clone(s.ModuleLogLevels)
	return out
}

// Normalize fills zero values with defaults and clamps ranges.
func (s *SystemSettings) Normalize() {
	if s.ListenHost == "" || (net.ParseIP(s.ListenHost) == nil && s.ListenHost != "localhost") {
		s.ListenHost = constants.DefaultListenHost
	}
	if s.ListenPort == 0 {
		s.ListenPort = constants.DefaultListenPort
	}
	if s.PoolMaxSize <= 0 {
		s.PoolMaxSize = constants.DefaultPoolMaxSize
	}
	s.Tun2Proxy.Normalize()
	if _, ok := debuglog.ParseLevel(s.LogLevel); !ok {
		s.LogLevel = debuglog.LevelInfo.String()
	}
	for module, raw := range s.ModuleLogLevels {
		if _, ok := debuglog.ParseLevel(raw); !ok || module == "" {
			delete(s.ModuleLogLevels, module)
		}
	}
}

// AppState is everything persisted between runs.
type AppState struct {
	Window               WindowState      `json:"window"`
	RemoteNodes          []overtls.Config `json:"remote_nodes"`
	CurrentNodeIndex     *int             `json:"current_node_index,omitempty"`
	CurrentSelectionPath string           `json:"current_selection_path,omitempty"`
	SystemSettings       SystemSettings   `json:"system_settings"`
}

// DefaultAppState is used when no state file exists or it cannot be read.
func DefaultAppState() AppState {
	return AppState{
		Window:         DefaultWindowState(),
		RemoteNodes:    []overtls.Config{},
		SystemSettings: DefaultSystemSettings(),
	}
}

// Normalize keeps the selected index in range and the window usable.
func (s *AppState) Normalize() {
	if s.Window.W < constants.MinWindowW || s.Window.H < constants.MinWindowH {
		s.Window = DefaultWindowState()
	}
	if s.RemoteNodes == nil {
		s.RemoteNodes = []overtls.Config{}
	}
	if s.CurrentNodeIndex != nil && (*s.CurrentNodeIndex < 0 || *s.CurrentNodeIndex >= len(s.RemoteNodes)) {
		s.CurrentNodeIndex = nil
	}
	s.SystemSettings.Normalize()
}

// ApplyLogLevels pushes the configured levels into logger. A level forced
// through the environment keeps precedence over the default level.
func ApplyLogLevels(logger *debuglog.Logger, s SystemSettings) {
	if logger == nil {
		return
	}
	if _, forced := debuglog.EnvLevel(); !forced {
		if level, ok := debuglog.ParseLevel(s.LogLevel); ok {
			logger.SetDefaultLevel(level)
		}
	}
	filters := make(map[string]debuglog.Level, len(s.ModuleLogLevels))
	for module, raw := range s.ModuleLogLevels {
		if level, ok := debuglog.ParseLevel(raw); ok {
			filters[module] = level
		}
	}
	logger.ReplaceModuleFilters(filters)
}
