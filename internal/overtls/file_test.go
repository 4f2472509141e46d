package overtls

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTunnelPathJSON(t *testing.T) {
	var single Config
	if err := json.Unmarshal([]byte(`{"tunnel_path":"/a/","client":{"server_host":"h"}}`), &single); err != nil {
		t.Fatal(err)
	}
	if len(single.TunnelPath) != 1 || single.TunnelPath[0] != "/a/" {
		t.Errorf("single path = %q", single.TunnelPath)
	}

	var many Config
	if err := json.Unmarshal([]byte(`{"tunnel_path":["/a/","/b/"]}`), &many); err != nil {
		t.Fatal(err)
	}
	if len(many.TunnelPath) != 2 {
		t.Errorf("path list = %q", many.TunnelPath)
	}

	out, err := json.Marshal(single.TunnelPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"/a/"` {
		t.Errorf("single path marshals as %s", out)
	}

	var bad Config
	if err := json.Unmarshal([]byte(`{"tunnel_path":42}`), &bad); err == nil {
		t.Error("expected error for a numeric path")
	}
}

func TestFromJSON(t *testing.T) {
	t.Run("With comments", func(t *testing.T) {
		doc := `{
  // exported by hand
  "remarks": "A",
  "tunnel_path": "/secret-tunnel-path/",
  "client": {"server_host": "example.com", "server_port": 443}
}`
		cfg, err := FromJSON([]byte(doc))
		if err != nil {
			t.Fatalf("FromJSON() error = %v", err)
		}
		if cfg.Remarks != "A" || cfg.Client.ServerPort != 443 {
			t.Errorf("FromJSON() = %+v", cfg)
		}
	})

	t.Run("Not an object", func(t *testing.T) {
		if _, err := FromJSON([]byte("ssr://abc")); !errors.Is(err, ErrNotANode) {
			t.Errorf("error = %v, expected ErrNotANode", err)
		}
	})

	t.Run("Object without client", func(t *testing.T) {
		if _, err := FromJSON([]byte(`{"remarks":"x"}`)); !errors.Is(err, ErrNotANode) {
			t.Errorf("error = %v, expected ErrNotANode", err)
		}
	})
}

func TestFromText(t *testing.T) {
	node := exampleNode()
	link, err := GenerateSSRURL(node)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ToJSON(node)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"JSON document", string(doc), false},
		{"URL", link, false},
		{"URL with whitespace", "  " + link + "\n", false},
		{"Garbage", "hello world", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromText(tt.input)
			if tt.expectError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromText() error = %v", err)
			}
			if cfg.Client.ServerHost != "example.com" {
				t.Errorf("ServerHost = %q", cfg.Client.ServerHost)
			}
		})
	}
}

func TestWriteAndReadConfigFile(t *testing.T) {
	node := exampleNode()
	node.Client.ClientID = "id-1"

	for _, name := range []string{"node.json", "node.yaml", "node.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteConfigFile(path, node); err != nil {
				t.Fatalf("WriteConfigFile() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			isJSON := strings.HasPrefix(strings.TrimSpace(string(data)), "{")
			if isJSON == isYAMLPath(path) {
				t.Errorf("format does not follow extension: %s", data)
			}

			got, err := FromConfigFile(path)
			if err != nil {
				t.Fatalf("FromConfigFile() error = %v", err)
			}
			if got.Remarks != node.Remarks || *got.Client != *node.Client || got.TunnelPath.First() != node.TunnelPath.First() {
				t.Errorf("FromConfigFile() = %+v, expected %+v", got, node)
			}
		})
	}
}

// TestConfigFileWithoutTunnelPath tests that a node with no tunnel path keeps
// a nil path through export and import
func TestConfigFileWithoutTunnelPath(t *testing.T) {
	node := Config{Remarks: "A", Client: &ClientConfig{ServerHost: "example.com", ServerPort: 443}}

	for _, name := range []string{"node.json", "node.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteConfigFile(path, node); err != nil {
				t.Fatalf("WriteConfigFile() error = %v", err)
			}
			got, err := FromConfigFile(path)
			if err != nil {
				t.Fatalf("FromConfigFile() error = %v", err)
			}
			if got.TunnelPath != nil {
				t.Errorf("Expected a nil tunnel path, got %#v", got.TunnelPath)
			}
			if got.Remarks != node.Remarks || *got.Client != *node.Client {
				t.Errorf("FromConfigFile() = %+v, expected %+v", got, node)
			}
		})
	}

	var decoded TunnelPath
	if err := json.Unmarshal([]byte("null"), &decoded); err != nil || decoded != nil {
		t.Errorf("Expected null to decode to nil, got %#v (%v)", decoded, err)
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	orig := exampleNode()
	clone := orig.Clone()
	clone.Client.ServerHost = "changed"
	clone.TunnelPath[0] = "/changed/"
	if orig.Client.ServerHost != "example.com" || orig.TunnelPath[0] != "/secret-tunnel-path/" {
		t.Errorf("Clone shares state with the original: %+v", orig)
	}
}
