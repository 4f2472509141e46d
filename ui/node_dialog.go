package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/internal/overtls"
)

// nodeForm holds the editor widgets of one node.
type nodeForm struct {
	remarks       *widget.Entry
	tunnelPath    *widget.Entry
	serverHost    *widget.Entry
	serverPort    *widget.Entry
	serverDomain  *widget.Entry
	caFile        *widget.Entry
	clientID      *widget.Entry
	disableTLS    *widget.Check
	dangerousMode *widget.Check

	// base keeps fields the form does not show (method, password and the
	// runtime listen settings).
	base overtls.Config
}

func newNodeForm() *nodeForm {
	f := &nodeForm{
		remarks:       widget.NewEntry(),
		tunnelPath:    widget.NewEntry(),
		serverHost:    widget.NewEntry(),
		serverPort:    widget.NewEntry(),
		serverDomain:  widget.NewEntry(),
		caFile:        widget.NewMultiLineEntry(),
		clientID:      widget.NewEntry(),
		disableTLS:    widget.NewCheck("Disable TLS", nil),
		dangerousMode: widget.NewCheck("Skip certificate verification", nil),
	}
	f.tunnelPath.SetPlaceHolder("/secret-tunnel-path/")
	f.serverHost.SetPlaceHolder("example.com")
	f.serverPort.SetPlaceHolder("443")
	f.serverDomain.SetPlaceHolder("same as server host")
	f.caFile.SetPlaceHolder("PEM content or path to a CA file")
	f.caFile.SetMinRowsVisible(3)

	f.serverHost.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("server host is required")
		}
		return nil
	}
	f.serverPort.Validator = func(s string) error {
		_, err := parsePort(s, true)
		return err
	}
	return f
}

func (f *nodeForm) load(cfg overtls.Config) {
	f.base = cfg.Clone()
	f.remarks.SetText(cfg.Remarks)
	f.tunnelPath.SetText(strings.Join(cfg.TunnelPath, ", "))
	client := cfg.Client
	if client == nil {
		client = &overtls.ClientConfig{}
	}
	f.serverHost.SetText(client.ServerHost)
	if client.ServerPort != 0 {
		f.serverPort.SetText(strconv.Itoa(int(client.ServerPort)))
	} else {
		f.serverPort.SetText("")
	}
	f.serverDomain.SetText(client.ServerDomain)
	f.caFile.SetText(client.CAFile)
	f.clientID.SetText(client.ClientID)
	f.disableTLS.SetChecked(client.DisableTLS)
	f.dangerousMode.SetChecked(client.DangerousMode)
}

// node returns the edited node.
func (f *nodeForm) node() (overtls.Config, error) {
	port, err := parsePort(f.serverPort.Text, true)
	if err != nil {
		return overtls.Config{}, err
	}
	host := strings.TrimSpace(f.serverHost.Text)
	if host == "" {
		return overtls.Config{}, errors.New("server host is required")
	}

	cfg := f.base.Clone()
	cfg.Remarks = strings.TrimSpace(f.remarks.Text)
	cfg.TunnelPath = nil
	for _, p := range strings.Split(f.tunnelPath.Text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TunnelPath = append(cfg.TunnelPath, p)
		}
	}
	if cfg.Client == nil {
		cfg.Client = &overtls.ClientConfig{}
	}
	c := cfg.Client
	c.ServerHost = host
	c.ServerPort = port
	c.ServerDomain = strings.TrimSpace(f.serverDomain.Text)
	c.CAFile = strings.TrimSpace(f.caFile.Text)
	c.ClientID = strings.TrimSpace(f.clientID.Text)
	c.DisableTLS = f.disableTLS.Checked
	c.DangerousMode = f.dangerousMode.Checked
	return cfg, nil
}

func (f *nodeForm) items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Remarks", f.remarks),
		widget.NewFormItem("Tunnel path", f.tunnelPath),
		widget.NewFormItem("Server host", f.serverHost),
		widget.NewFormItem("Server port", f.serverPort),
		widget.NewFormItem("Server domain", f.serverDomain),
		widget.NewFormItem("CA file", f.caFile),
		widget.NewFormItem("Client ID", f.clientID),
		widget.NewFormItem("", f.disableTLS),
		widget.NewFormItem("", f.dangerousMode),
	}
}

// ShowNodeDialog opens the node editor prefilled with node. The returned
// channel receives exactly one value: the edited node, or nil on cancel.
func ShowNodeDialog(window fyne.Window, title string, node overtls.Config) <-chan *overtls.Config {
	result := make(chan *overtls.Config, 1)
	form := newNodeForm()
	form.load(node)

	d := dialog.NewForm(title, "Save", "Cancel", form.items(), func(ok bool) {
		if !ok {
			result <- nil
			return
		}
		cfg, err := form.node()
		if err != nil {
			result <- nil
			dialog.ShowError(fmt.Errorf("%s: %w", title, err), window)
			return
		}
		result <- &cfg
	}, window)
	d.Resize(fyne.NewSize(520, 560))
	d.Show()
	return result
}

// parsePort parses a TCP port. An empty string is port 0 when allowEmpty.
func parsePort(s string, allowEmpty bool) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if allowEmpty {
			return 0, nil
		}
		return 0, errors.New("port is required")
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(n), nil
}
