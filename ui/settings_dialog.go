package ui

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/core"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/tun2proxy"
)

// logModules are the origins offered for per-module log levels.
var logModules = []string{"core", "services", "overtls", "tun2proxy", "tun2socks", "qrcode", "ui", "api", "main"}

const defaultLevelOption = "(default)"

var levelOptions = []string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE", "OFF"}

// settingsForm holds the editor widgets of the system settings.
type settingsForm struct {
	listenHost     *widget.Entry
	listenPort     *widget.Entry
	listenUser     *widget.Entry
	listenPassword *widget.Entry
	poolMaxSize    *widget.Entry
	cacheDNS       *widget.Check

	interceptEnable *widget.Check
	exitOnFatal     *widget.Check
	maxSessions     *widget.Entry
	dnsStrategy     *widget.Select
	dnsAddr         *widget.Entry
	bypass          *widget.Entry

	logLevel     *widget.Select
	moduleLevels map[string]*widget.Select

	base core.SystemSettings
}

func newSettingsForm() *settingsForm {
	f := &settingsForm{
		listenHost:      widget.NewEntry(),
		listenPort:      widget.NewEntry(),
		listenUser:      widget.NewEntry(),
		listenPassword:  widget.NewPasswordEntry(),
		poolMaxSize:     widget.NewEntry(),
		cacheDNS:        widget.NewCheck("Cache DNS answers", nil),
		interceptEnable: widget.NewCheck("Capture system traffic (needs administrator rights)", nil),
		exitOnFatal:     widget.NewCheck("Stop on fatal errors", nil),
		maxSessions:     widget.NewEntry(),
		dnsStrategy:     widget.NewSelect(tun2proxy.DNSStrategyNames(), nil),
		dnsAddr:         widget.NewEntry(),
		bypass:          widget.NewMultiLineEntry(),
		logLevel:        widget.NewSelect(levelOptions, nil),
		moduleLevels:    make(map[string]*widget.Select, len(logModules)),
	}
	for _, m := range logModules {
		f.moduleLevels[m] = widget.NewSelect(append([]string{defaultLevelOption}, levelOptions...), nil)
	}
	f.bypass.SetPlaceHolder("One IP or CIDR per line")
	f.bypass.SetMinRowsVisible(4)
	f.listenPort.Validator = func(s string) error {
		_, err := parsePort(s, false)
		return err
	}
	f.listenHost.Validator = func(s string) error {
		if net.ParseIP(strings.TrimSpace(s)) == nil {
			return errors.New("listen host must be an IP address")
		}
		return nil
	}
	return f
}

func (f *settingsForm) load(s core.SystemSettings) {
	f.base = s.Clone()
	f.listenHost.SetText(s.ListenHost)
	f.listenPort.SetText(strconv.Itoa(int(s.ListenPort)))
	f.listenUser.SetText(s.ListenUser)
	f.listenPassword.SetText(s.ListenPassword)
	f.poolMaxSize.SetText(strconv.Itoa(s.PoolMaxSize))
	f.cacheDNS.SetChecked(s.CacheDNS)

	f.interceptEnable.SetChecked(s.InterceptionEnabled())
	f.exitOnFatal.SetChecked(s.Tun2Proxy.ExitOnFatalError)
	f.maxSessions.SetText(strconv.Itoa(s.Tun2Proxy.MaxSessions))
	f.dnsStrategy.SetSelected(s.Tun2Proxy.DNS.String())
	f.dnsAddr.SetText(s.Tun2Proxy.DNSAddr)
	f.bypass.SetText(strings.Join(s.Tun2Proxy.Bypass, "\n"))

	level, ok := debuglog.ParseLevel(s.LogLevel)
	if !ok {
		level = debuglog.LevelInfo
	}
	f.logLevel.SetSelected(level.String())
	for m, sel := range f.moduleLevels {
		sel.SetSelected(defaultLevelOption)
		if raw, ok := s.ModuleLogLevels[m]; ok {
			if lvl, ok := debuglog.ParseLevel(raw); ok {
				sel.SetSelected(lvl.String())
			}
		}
	}
}

// settings returns the edited settings, normalized.
func (f *settingsForm) settings() (core.SystemSettings, error) {
	s := f.base.Clone()

	port, err := parsePort(f.listenPort.Text, false)
	if err != nil {
		return s, fmt.Errorf("listen port: %w", err)
	}
	host := strings.TrimSpace(f.listenHost.Text)
	if net.ParseIP(host) == nil {
		return s, fmt.Errorf("listen host %q is not an IP address", host)
	}
	pool, err := strconv.Atoi(strings.TrimSpace(f.poolMaxSize.Text))
	if err != nil || pool <= 0 {
		return s, fmt.Errorf("pool size %q is not a positive number", f.poolMaxSize.Text)
	}
	sessions, err := strconv.Atoi(strings.TrimSpace(f.maxSessions.Text))
	if err != nil {
		return s, fmt.Errorf("max sessions %q is not a number", f.maxSessions.Text)
	}
	dns, err := tun2proxy.ParseDNSStrategy(f.dnsStrategy.Selected)
	if err != nil {
		return s, err
	}

	s.ListenHost = host
	s.ListenPort = port
	s.ListenUser = strings.TrimSpace(f.listenUser.Text)
	s.ListenPassword = f.listenPassword.Text
	s.PoolMaxSize = pool
	s.CacheDNS = f.cacheDNS.Checked

	s.SetInterceptionEnabled(f.interceptEnable.Checked)
	s.Tun2Proxy.ExitOnFatalError = f.exitOnFatal.Checked
	s.Tun2Proxy.MaxSessions = sessions
	s.Tun2Proxy.DNS = dns
	s.Tun2Proxy.DNSAddr = strings.TrimSpace(f.dnsAddr.Text)
	s.Tun2Proxy.Bypass = nil
	for _, line := range strings.Split(f.bypass.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.Tun2Proxy.Bypass = append(s.Tun2Proxy.Bypass, line)
		}
	}

	s.LogLevel = f.logLevel.Selected
	s.ModuleLogLevels = nil
	for m, sel := range f.moduleLevels {
		if sel.Selected == "" || sel.Selected == defaultLevelOption {
			continue
		}
		if s.ModuleLogLevels == nil {
			s.ModuleLogLevels = make(map[string]string)
		}
		s.ModuleLogLevels[m] = sel.Selected
	}

	s.Normalize()
	return s, nil
}

func (f *settingsForm) content() fyne.CanvasObject {
	common := widget.NewForm(
		widget.NewFormItem("Listen host", f.listenHost),
		widget.NewFormItem("Listen port", f.listenPort),
		widget.NewFormItem("Listen user", f.listenUser),
		widget.NewFormItem("Listen password", f.listenPassword),
		widget.NewFormItem("Pool size", f.poolMaxSize),
		widget.NewFormItem("", f.cacheDNS),
	)
	intercept := widget.NewForm(
		widget.NewFormItem("", f.interceptEnable),
		widget.NewFormItem("", f.exitOnFatal),
		widget.NewFormItem("Max sessions", f.maxSessions),
		widget.NewFormItem("DNS strategy", f.dnsStrategy),
		widget.NewFormItem("DNS address", f.dnsAddr),
		widget.NewFormItem("Bypass", f.bypass),
	)
	logging := widget.NewForm(widget.NewFormItem("Default level", f.logLevel))
	for _, m := range logModules {
		logging.Append(m, f.moduleLevels[m])
	}

	return container.NewAppTabs(
		container.NewTabItem("Common", common),
		container.NewTabItem("Tun2proxy", intercept),
		container.NewTabItem("Logging", container.NewVScroll(logging)),
	)
}

// ShowSettingsDialog opens the settings editor. The returned channel
// receives exactly one value: the new settings, or nil on cancel.
func ShowSettingsDialog(window fyne.Window, settings core.SystemSettings) <-chan *core.SystemSettings {
	result := make(chan *core.SystemSettings, 1)
	form := newSettingsForm()
	form.load(settings)

	d := dialog.NewCustomConfirm("Settings", "Apply", "Cancel", form.content(), func(ok bool) {
		if !ok {
			result <- nil
			return
		}
		s, err := form.settings()
		if err != nil {
			result <- nil
			dialog.ShowError(fmt.Errorf("Settings: %w", err), window)
			return
		}
		result <- &s
	}, window)
	d.Resize(fyne.NewSize(560, 520))
	d.Show()
	return result
}
