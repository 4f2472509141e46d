// Package overtls holds the OverTLS client configuration model and the
// client entry point used by the manager: correctness checks, the ssr://
// interchange URL, config file import/export and the local SOCKS5 relay.
package overtls

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every correctness error.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrNotANode is returned when a document parses but holds no client node.
var ErrNotANode = errors.New("document is not an OverTLS client node")

// TunnelPath is one or more websocket paths. In JSON and YAML a single path
// is written as a plain string, several as a list.
type TunnelPath []string

// DefaultTunnelPath is used when a URL carries no path.
const DefaultTunnelPath = "/tunnel/"

// Single returns a TunnelPath holding one path.
func Single(p string) TunnelPath {
	return TunnelPath{p}
}

// First returns the first path or "".
func (t TunnelPath) First() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

func (t TunnelPath) String() string {
	return strings.Join(t, ",")
}

func (t TunnelPath) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *TunnelPath) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TunnelPath{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("tunnel_path: expected string or list of strings: %w", err)
	}
	if len(many) == 0 {
		many = nil
	}
	*t = many
	return nil
}

func (t TunnelPath) MarshalYAML() (interface{}, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}

func (t *TunnelPath) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
		*t = TunnelPath{value.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		if len(many) == 0 {
			many = nil
		}
		*t = many
		return nil
	default:
		return fmt.Errorf("tunnel_path: expected string or list of strings")
	}
}

// ClientConfig is the client role of a node. The listen/pool/dns fields are
// runtime settings merged in from the manager's system settings before a run.
type ClientConfig struct {
	ServerHost    string `json:"server_host" yaml:"server_host"`
	ServerPort    uint16 `json:"server_port" yaml:"server_port"`
	ServerDomain  string `json:"server_domain,omitempty" yaml:"server_domain,omitempty"`
	CAFile        string `json:"cafile,omitempty" yaml:"cafile,omitempty"`
	ClientID      string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	DisableTLS    bool   `json:"disable_tls,omitempty" yaml:"disable_tls,omitempty"`
	DangerousMode bool   `json:"dangerous_mode,omitempty" yaml:"dangerous_mode,omitempty"`

	ListenHost     string `json:"listen_host,omitempty" yaml:"listen_host,omitempty"`
	ListenPort     uint16 `json:"listen_port,omitempty" yaml:"listen_port,omitempty"`
	ListenUser     string `json:"listen_user,omitempty" yaml:"listen_user,omitempty"`
	ListenPassword string `json:"listen_password,omitempty" yaml:"listen_password,omitempty"`
	PoolMaxSize    int    `json:"pool_max_size,omitempty" yaml:"pool_max_size,omitempty"`
	CacheDNS       bool   `json:"cache_dns,omitempty" yaml:"cache_dns,omitempty"`
}

// Config is one node profile.
type Config struct {
	Remarks    string        `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Method     string        `json:"method,omitempty" yaml:"method,omitempty"`
	Password   string        `json:"password,omitempty" yaml:"password,omitempty"`
	TunnelPath TunnelPath    `json:"tunnel_path" yaml:"tunnel_path"`
	Client     *ClientConfig `json:"client,omitempty" yaml:"client,omitempty"`
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	if c.TunnelPath != nil {
		out.TunnelPath = append(TunnelPath(nil), c.TunnelPath...)
	}
	if c.Client != nil {
		cl := *c.Client
		out.Client = &cl
	}
	return out
}

// Title returns the remarks or "host:port" for display.
func (c Config) Title() string {
	if c.Remarks != "" {
		return c.Remarks
	}
	if c.Client != nil {
		return fmt.Sprintf("%s:%d", c.Client.ServerHost, c.Client.ServerPort)
	}
	return ""
}
