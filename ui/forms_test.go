//go:build cgo

package ui

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"

	"overtls-manager/core"
	"overtls-manager/core/services"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/tun2proxy"
)

func exampleNode() overtls.Config {
	return overtls.Config{
		Remarks:    "A",
		Password:   "kept",
		TunnelPath: overtls.TunnelPath{"/one/", "/two/"},
		Client: &overtls.ClientConfig{
			ServerHost:    "example.com",
			ServerPort:    443,
			ClientID:      "c1",
			DangerousMode: true,
			ListenPort:    5080,
		},
	}
}

// TestNodeFormRoundTrip tests that loading and reading back a node keeps it intact
func TestNodeFormRoundTrip(t *testing.T) {
	test.NewTempApp(t)
	f := newNodeForm()
	node := exampleNode()
	f.load(node)

	got, err := f.node()
	if err != nil {
		t.Fatalf("node failed: %v", err)
	}
	if !reflect.DeepEqual(got, node) {
		t.Errorf("Round trip changed the node:\n%+v\n%+v", got, node)
	}

	t.Run("Edits applied", func(t *testing.T) {
		f.remarks.SetText("  B  ")
		f.tunnelPath.SetText("/x/, , /y/")
		f.serverPort.SetText("")
		f.disableTLS.SetChecked(true)
		got, err := f.node()
		if err != nil {
			t.Fatalf("node failed: %v", err)
		}
		if got.Remarks != "B" || len(got.TunnelPath) != 2 || got.Client.ServerPort != 0 || !got.Client.DisableTLS {
			t.Errorf("Unexpected node %+v %+v", got, *got.Client)
		}
	})

	tests := []struct {
		name string
		host string
		port string
	}{
		{"Missing host", " ", "443"},
		{"Port not a number", "example.com", "https"},
		{"Port out of range", "example.com", "70000"},
		{"Port zero", "example.com", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.load(exampleNode())
			f.serverHost.SetText(tt.host)
			f.serverPort.SetText(tt.port)
			if _, err := f.node(); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

// TestSettingsFormRoundTrip tests the settings editor
func TestSettingsFormRoundTrip(t *testing.T) {
	test.NewTempApp(t)
	s := core.DefaultSystemSettings()
	s.ListenUser = "u"
	s.ListenPassword = "p"
	s.Tun2Proxy.Bypass = []string{"10.0.0.0/8", "192.168.0.0/16"}
	s.Tun2Proxy.DNS = tun2proxy.DNSOverTCP
	s.ModuleLogLevels = map[string]string{"tun2proxy": "TRACE"}

	f := newSettingsForm()
	f.load(s)
	got, err := f.settings()
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Round trip changed the settings:\n%+v\n%+v", got, s)
	}

	t.Run("Interception toggle and levels", func(t *testing.T) {
		f.interceptEnable.SetChecked(false)
		f.moduleLevels["tun2proxy"].SetSelected(defaultLevelOption)
		f.moduleLevels["core"].SetSelected("DEBUG")
		f.maxSessions.SetText("10")
		got, err := f.settings()
		if err != nil {
			t.Fatalf("settings failed: %v", err)
		}
		if got.InterceptionEnabled() {
			t.Error("Interception still enabled")
		}
		if _, ok := got.ModuleLogLevels["tun2proxy"]; ok || got.ModuleLogLevels["core"] != "DEBUG" {
			t.Errorf("Unexpected module levels %v", got.ModuleLogLevels)
		}
		if got.Tun2Proxy.MaxSessions != tun2proxy.MinSessions {
			t.Errorf("Expected sessions clamped to %d, got %d", tun2proxy.MinSessions, got.Tun2Proxy.MaxSessions)
		}
	})

	tests := []struct {
		name   string
		mutate func(*settingsForm)
	}{
		{"Listen host", func(f *settingsForm) { f.listenHost.SetText("localhost") }},
		{"Listen port", func(f *settingsForm) { f.listenPort.SetText("") }},
		{"Pool size", func(f *settingsForm) { f.poolMaxSize.SetText("-1") }},
		{"Max sessions", func(f *settingsForm) { f.maxSessions.SetText("many") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.load(s)
			tt.mutate(f)
			if _, err := f.settings(); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

// TestNodeCell tests the table column texts
func TestNodeCell(t *testing.T) {
	node := exampleNode()
	want := []string{"A", "example.com", "443", "/one/,/two/"}
	for col, w := range want {
		if got := nodeCell(node, col); got != w {
			t.Errorf("Column %d: expected %q, got %q", col, w, got)
		}
	}
	bare := overtls.Config{Remarks: "bare"}
	if nodeCell(bare, 1) != "" || nodeCell(bare, 2) != "" || nodeCell(node, 9) != "" {
		t.Error("Expected empty cells")
	}
}

// TestSafeFileName tests turning titles into file names
func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"A":                 "A",
		"  ":                "node",
		"host:443":          "host_443",
		"a/b\\c*d?\"e<f>g|": "a_b_c_d__e_f_g_",
		"tab\there":         "tabhere",
	}
	for in, want := range tests {
		if got := safeFileName(in); got != want {
			t.Errorf("safeFileName(%q): expected %q, got %q", in, want, got)
		}
	}
}

// TestFormatPublicIPReport tests the public IP summary
func TestFormatPublicIPReport(t *testing.T) {
	text := formatPublicIPReport(services.PublicIPReport{Direct: "198.51.100.7"}, "stun.example:3478")
	if !strings.Contains(text, "198.51.100.7") || !strings.Contains(text, "no node running") {
		t.Errorf("Unexpected text %q", text)
	}
	text = formatPublicIPReport(services.PublicIPReport{
		DirectErr:     errors.New("timeout"),
		TunnelChecked: true,
		Tunnel:        "203.0.113.5",
	}, "stun.example:3478")
	if !strings.Contains(text, "timeout") || !strings.Contains(text, "Tunnel: 203.0.113.5") {
		t.Errorf("Unexpected text %q", text)
	}
}

// TestLevelColor tests that each severity has its own colour in the log view
func TestLevelColor(t *testing.T) {
	tests := []struct {
		level debuglog.Level
		want  fyne.ThemeColorName
	}{
		{debuglog.LevelError, theme.ColorNameError},
		{debuglog.LevelWarn, theme.ColorNameWarning},
		{debuglog.LevelInfo, theme.ColorNameSuccess},
		{debuglog.LevelVerbose, theme.ColorNamePrimary},
		{debuglog.LevelTrace, theme.ColorNamePlaceHolder},
	}
	seen := map[fyne.ThemeColorName]debuglog.Level{}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := levelColor(tt.level)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
			if other, ok := seen[got]; ok {
				t.Errorf("%s shares its colour with %s", tt.level, other)
			}
			seen[got] = tt.level
		})
	}
}

// TestErrorBanner tests showing and hiding the banner
func TestErrorBanner(t *testing.T) {
	test.NewTempApp(t)
	b := NewErrorBanner("Fix", func() {})
	if b.IsVisible() {
		t.Error("New banner is visible")
	}
	b.SetMessage("broken")
	if !b.IsVisible() || b.Message() != "broken" {
		t.Error("Banner not shown with message")
	}
	b.SetMessage("")
	if b.IsVisible() {
		t.Error("Banner not hidden")
	}
}
