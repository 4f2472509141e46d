package overtls

import (
	"fmt"
	"net"
	"os"
	"strings"
)

const (
	defaultTLSPort     = 443
	defaultPlainPort   = 80
	defaultListenHost  = "127.0.0.1"
	defaultPoolMaxSize = 100
)

// CheckCorrectness validates a client node and fills derived defaults in place:
// tunnel paths are normalized to "/path/", an empty server domain becomes the
// server host, a zero server port becomes 443 (80 without TLS).
func CheckCorrectness(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: empty node", ErrInvalidConfig)
	}

	paths := make(TunnelPath, 0, len(cfg.TunnelPath))
	for _, p := range cfg.TunnelPath {
		if n := normalizePath(p); n != "" {
			paths = append(paths, n)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: tunnel path is required", ErrInvalidConfig)
	}
	cfg.TunnelPath = paths

	client := cfg.Client
	if client == nil {
		return fmt.Errorf("%w: client settings are missing", ErrInvalidConfig)
	}
	client.ServerHost = strings.TrimSpace(client.ServerHost)
	if client.ServerHost == "" {
		return fmt.Errorf("%w: server host is required", ErrInvalidConfig)
	}
	if strings.ContainsAny(client.ServerHost, " /") {
		return fmt.Errorf("%w: server host %q is malformed", ErrInvalidConfig, client.ServerHost)
	}
	if client.ServerPort == 0 {
		client.ServerPort = defaultServerPort(client.DisableTLS)
	}
	client.ServerDomain = strings.TrimSpace(client.ServerDomain)
	if client.ServerDomain == "" {
		client.ServerDomain = client.ServerHost
	}

	if client.ListenHost == "" {
		client.ListenHost = defaultListenHost
	}
	if net.ParseIP(client.ListenHost) == nil && client.ListenHost != "localhost" {
		return fmt.Errorf("%w: listen host %q is not an IP address", ErrInvalidConfig, client.ListenHost)
	}
	if client.ListenPort == 0 {
		return fmt.Errorf("%w: listen port is required", ErrInvalidConfig)
	}
	if (client.ListenUser == "") != (client.ListenPassword == "") {
		return fmt.Errorf("%w: listen user and password must be set together", ErrInvalidConfig)
	}
	if client.PoolMaxSize <= 0 {
		client.PoolMaxSize = defaultPoolMaxSize
	}

	if client.CAFile != "" && !client.DisableTLS {
		if _, err := client.CertificatePEM(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// CertificatePEM returns the CA material: CAFile is either inline PEM content
// or a path to a PEM file. Returns nil, nil when no CA is configured.
func (c *ClientConfig) CertificatePEM() ([]byte, error) {
	if c.CAFile == "" {
		return nil, nil
	}
	if strings.Contains(c.CAFile, "-----BEGIN CERTIFICATE-----") {
		return []byte(c.CAFile), nil
	}
	data, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read CA file %q: %w", c.CAFile, err)
	}
	if !strings.Contains(string(data), "-----BEGIN CERTIFICATE-----") {
		return nil, fmt.Errorf("CA file %q holds no PEM certificate", c.CAFile)
	}
	return data, nil
}

// defaultServerPort is the port used when a node leaves it at zero.
func defaultServerPort(disableTLS bool) uint16 {
	if disableTLS {
		return defaultPlainPort
	}
	return defaultTLSPort
}

func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p + "/"
}
