// Package tun2proxy captures system traffic on a TUN device and forwards it
// to the local SOCKS5 listener of the tunnel client.
package tun2proxy

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"overtls-manager/internal/constants"
)

// DNSStrategy selects how DNS queries leave the machine while traffic is
// intercepted.
type DNSStrategy int

const (
	// DNSVirtual answers through the tunnel using the configured resolver.
	DNSVirtual DNSStrategy = iota
	// DNSOverTCP sends queries to dns_addr through the tunnel.
	DNSOverTCP
	// DNSDirect sends queries to dns_addr outside the tunnel.
	DNSDirect
)

var dnsStrategyNames = []string{"virtual", "over-tcp", "direct"}

// DNSStrategyNames lists the strategies in index order, for selection widgets.
func DNSStrategyNames() []string {
	return append([]string(nil), dnsStrategyNames...)
}

func (s DNSStrategy) String() string {
	if s < 0 || int(s) >= len(dnsStrategyNames) {
		return dnsStrategyNames[DNSVirtual]
	}
	return dnsStrategyNames[s]
}

// ParseDNSStrategy accepts a strategy name, case-insensitively.
func ParseDNSStrategy(raw string) (DNSStrategy, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for i, name := range dnsStrategyNames {
		if raw == name {
			return DNSStrategy(i), nil
		}
	}
	return DNSVirtual, fmt.Errorf("unknown dns strategy %q", raw)
}

func (s DNSStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DNSStrategy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDNSStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Session limits accepted for MaxSessions.
const (
	MinSessions     = 50
	MaxSessionLimit = 300
)

// Args configures one interception run.
type Args struct {
	ExitOnFatalError bool        `json:"exit_on_fatal_error"`
	MaxSessions      int         `json:"max_sessions"`
	DNS              DNSStrategy `json:"dns"`
	DNSAddr          string      `json:"dns_addr"`
	// Bypass lists IPs or CIDRs routed around the TUN device, at least the
	// tunnel server itself.
	Bypass []string `json:"bypass,omitempty"`
	// Proxy is the SOCKS5 URL traffic is handed to. Filled per run.
	Proxy string `json:"proxy,omitempty"`
}

// DefaultArgs returns the settings used for a fresh configuration.
func DefaultArgs() Args {
	return Args{
		MaxSessions: constants.DefaultMaxSessions,
		DNS:         DNSVirtual,
		DNSAddr:     constants.DefaultDNSAddr,
	}
}

// Normalize clamps the session limit and fills an empty DNS address.
func (a *Args) Normalize() {
	if a.MaxSessions < MinSessions {
		a.MaxSessions = MinSessions
	}
	if a.MaxSessions > MaxSessionLimit {
		a.MaxSessions = MaxSessionLimit
	}
	if net.ParseIP(strings.TrimSpace(a.DNSAddr)) == nil {
		a.DNSAddr = constants.DefaultDNSAddr
	}
}

// Clone returns a copy that does not share the bypass list.
func (a Args) Clone() Args {
	out := a
	out.Bypass = append([]string(nil), a.Bypass...)
	return out
}

// AddBypass appends an address unless it is already present.
func (a *Args) AddBypass(addr string) {
	for _, b := range a.Bypass {
		if b == addr {
			return
		}
	}
	a.Bypass = append(a.Bypass, addr)
}

// SOCKS5URL builds the proxy URL for a local listener. Credentials are
// included when either of them is set.
func SOCKS5URL(host string, port uint16, user, password string) string {
	u := url.URL{
		Scheme: "socks5",
		Host:   net.JoinHostPort(host, strconv.Itoa(int(port))),
	}
	if user != "" || password != "" {
		u.User = url.UserPassword(user, password)
	}
	return u.String()
}

// Validate reports whether the args can start an interception run.
func (a Args) Validate() error {
	if a.Proxy == "" {
		return fmt.Errorf("tun2proxy: proxy address is required")
	}
	u, err := url.Parse(a.Proxy)
	if err != nil {
		return fmt.Errorf("tun2proxy: bad proxy %q: %w", a.Proxy, err)
	}
	if u.Scheme != "socks5" || u.Port() == "" {
		return fmt.Errorf("tun2proxy: proxy %q is not a socks5://host:port URL", a.Proxy)
	}
	return nil
}
