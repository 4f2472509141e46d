package core

import (
	"encoding/json"
	"testing"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/tun2proxy"
)

// TestSystemSettingsNormalize tests defaults and clamping
func TestSystemSettingsNormalize(t *testing.T) {
	s := SystemSettings{
		ListenHost:      "not a host",
		Tun2Proxy:       tun2proxy.Args{MaxSessions: 5000},
		LogLevel:        "loud",
		ModuleLogLevels: map[string]string{"core": "trace", "ui": "bogus", "": "info"},
	}
	s.Normalize()

	if s.ListenHost != "127.0.0.1" || s.ListenPort != 5080 || s.PoolMaxSize != 100 {
		t.Errorf("Defaults not applied: %+v", s)
	}
	if s.Tun2Proxy.MaxSessions != tun2proxy.MaxSessionLimit {
		t.Errorf("Expected sessions clamped to %d, got %d", tun2proxy.MaxSessionLimit, s.Tun2Proxy.MaxSessions)
	}
	if s.LogLevel != "INFO" {
		t.Errorf("Expected INFO, got %q", s.LogLevel)
	}
	if len(s.ModuleLogLevels) != 1 || s.ModuleLogLevels["core"] != "trace" {
		t.Errorf("Invalid module levels kept: %v", s.ModuleLogLevels)
	}
}

// TestSystemSettingsClone tests that clones share nothing
func TestSystemSettingsClone(t *testing.T) {
	s := DefaultSystemSettings()
	s.Tun2Proxy.Bypass = []string{"10.0.0.0/8"}
	s.ModuleLogLevels = map[string]string{"core": "debug"}

	c := s.Clone()
	*c.Tun2ProxyEnable = false
	c.Tun2Proxy.Bypass[0] = "changed"
	c.ModuleLogLevels["core"] = "error"

	if !s.InterceptionEnabled() || s.Tun2Proxy.Bypass[0] != "10.0.0.0/8" || s.ModuleLogLevels["core"] != "debug" {
		t.Errorf("Clone shares state with the original: %+v", s)
	}
}

// TestInterceptionFlagJSON tests the optional interception flag
func TestInterceptionFlagJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want bool
	}{
		{"Absent", `{}`, false},
		{"Null", `{"tun2proxy_enable":null}`, false},
		{"False", `{"tun2proxy_enable":false}`, false},
		{"True", `{"tun2proxy_enable":true}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SystemSettings
			if err := json.Unmarshal([]byte(tt.json), &s); err != nil {
				t.Fatal(err)
			}
			if got := s.InterceptionEnabled(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestApplyLogLevels tests pushing settings into a logger
func TestApplyLogLevels(t *testing.T) {
	t.Setenv("OVERTLS_MANAGER_DEBUG", "")
	logger := debuglog.NewLogger(nil, debuglog.LevelInfo)
	s := DefaultSystemSettings()
	s.LogLevel = "warn"
	s.ModuleLogLevels = map[string]string{"tun2proxy": "trace"}
	ApplyLogLevels(logger, s)

	if logger.Enabled(debuglog.LevelInfo, "core") {
		t.Error("Default level not applied")
	}
	if !logger.Enabled(debuglog.LevelTrace, "tun2proxy/run") {
		t.Error("Module level not applied")
	}
	ApplyLogLevels(nil, s)
}
