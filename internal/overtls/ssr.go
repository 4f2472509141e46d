package overtls

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	ssrScheme       = "ssr://"
	defaultMethod   = "none"
	defaultPassword = "password"
)

// ErrNotSSRURL is returned when the text is not an OverTLS ssr:// link.
var ErrNotSSRURL = errors.New("not an OverTLS ssr:// URL")

// GenerateSSRURL serializes a node into an ssr:// link carrying the OverTLS
// fields as ot_* parameters. Every component is base64url without padding.
func GenerateSSRURL(cfg Config) (string, error) {
	client := cfg.Client
	if client == nil {
		return "", fmt.Errorf("GenerateSSRURL: %w: client settings are missing", ErrInvalidConfig)
	}
	if client.ServerHost == "" {
		return "", fmt.Errorf("GenerateSSRURL: %w: server host is required", ErrInvalidConfig)
	}

	method := cfg.Method
	if method == "" {
		method = defaultMethod
	}
	password := cfg.Password
	if password == "" {
		password = defaultPassword
	}
	port := client.ServerPort
	if port == 0 {
		port = defaultServerPort(client.DisableTLS)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:origin:%s:plain:%s/?", client.ServerHost, port, method, b64(password))

	params := []string{
		"remarks=" + b64(cfg.Remarks),
		"ot_enable=1",
		"ot_domain=" + b64(client.ServerDomain),
		"ot_path=" + b64(cfg.TunnelPath.First()),
	}
	if client.CAFile != "" {
		pem, err := client.CertificatePEM()
		if err != nil {
			return "", fmt.Errorf("GenerateSSRURL: %w", err)
		}
		params = append(params, "ot_cert="+b64(string(pem)))
	}
	if client.ClientID != "" {
		params = append(params, "ot_client_id="+b64(client.ClientID))
	}
	if client.DisableTLS {
		params = append(params, "ot_disable_tls=1")
	}
	if client.DangerousMode {
		params = append(params, "ot_dangerous_mode=1")
	}
	b.WriteString(strings.Join(params, "&"))

	return ssrScheme + b64(b.String()), nil
}

// FromSSRURL parses an ssr:// link produced by GenerateSSRURL (or by other
// OverTLS clients). The "none" method and the "password" placeholder are
// treated as unset.
func FromSSRURL(raw string) (Config, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(raw), ssrScheme) {
		return Config{}, ErrNotSSRURL
	}
	body, err := unb64(raw[len(ssrScheme):])
	if err != nil {
		return Config{}, fmt.Errorf("FromSSRURL: %w: %v", ErrNotSSRURL, err)
	}

	head, query, _ := strings.Cut(body, "/?")
	// host may be an IPv6 literal, so split the five trailing fields from the right.
	fields := strings.Split(head, ":")
	if len(fields) < 6 {
		return Config{}, fmt.Errorf("FromSSRURL: %w: expected host:port:protocol:method:obfs:password", ErrNotSSRURL)
	}
	n := len(fields)
	host := strings.Join(fields[:n-5], ":")
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	port, err := strconv.ParseUint(fields[n-5], 10, 16)
	if err != nil {
		return Config{}, fmt.Errorf("FromSSRURL: bad port %q: %w", fields[n-5], err)
	}
	method := fields[n-3]
	password, err := unb64(fields[n-1])
	if err != nil {
		return Config{}, fmt.Errorf("FromSSRURL: bad password: %w", err)
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return Config{}, fmt.Errorf("FromSSRURL: bad parameters: %w", err)
	}
	if values.Get("ot_enable") != "1" {
		return Config{}, fmt.Errorf("FromSSRURL: %w: ot_enable is not set", ErrNotSSRURL)
	}
	param := func(key string) (string, error) {
		v := values.Get(key)
		if v == "" {
			return "", nil
		}
		out, err := unb64(v)
		if err != nil {
			return "", fmt.Errorf("FromSSRURL: bad %s: %w", key, err)
		}
		return out, nil
	}

	cfg := Config{Client: &ClientConfig{ServerHost: host, ServerPort: uint16(port)}}
	if method != defaultMethod {
		cfg.Method = method
	}
	if password != defaultPassword {
		cfg.Password = password
	}
	if cfg.Remarks, err = param("remarks"); err != nil {
		return Config{}, err
	}
	if cfg.Client.ServerDomain, err = param("ot_domain"); err != nil {
		return Config{}, err
	}
	path, err := param("ot_path")
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		path = DefaultTunnelPath
	}
	cfg.TunnelPath = Single(path)
	if cfg.Client.CAFile, err = param("ot_cert"); err != nil {
		return Config{}, err
	}
	if cfg.Client.ClientID, err = param("ot_client_id"); err != nil {
		return Config{}, err
	}
	cfg.Client.DisableTLS = values.Get("ot_disable_tls") == "1"
	cfg.Client.DangerousMode = values.Get("ot_dangerous_mode") == "1"
	return cfg, nil
}

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// unb64 accepts both url-safe and standard alphabets, padded or not.
func unb64(s string) (string, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	out, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
