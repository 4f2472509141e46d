package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"overtls-manager/internal/overtls"
	"overtls-manager/internal/qrcode"
)

func exampleURL(t *testing.T) string {
	t.Helper()
	url, err := overtls.GenerateSSRURL(exampleNode())
	if err != nil {
		t.Fatalf("GenerateSSRURL failed: %v", err)
	}
	return url
}

// TestImportText tests the JSON then URL fallback of pasted text
func TestImportText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"JSON node", `{"remarks":"A","tunnel_path":"/p/","client":{"server_host":"example.com","server_port":443}}`, false},
		{"URL", exampleURL(t), false},
		{"URL with spaces", "  \n" + exampleURL(t) + "\n", false},
		{"Empty", "   ", true},
		{"Garbage", "hello world", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ImportText(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Client == nil || cfg.Client.ServerHost != "example.com" {
				t.Errorf("Unexpected node %+v", cfg)
			}
		})
	}
}

// TestImportFile tests the config file, QR image and URL text chain
func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	url := exampleURL(t)

	jsonPath := filepath.Join(dir, "node.json")
	if err := overtls.WriteConfigFile(jsonPath, exampleNode()); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	png, err := qrcode.Encode(url, 256)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	pngPath := filepath.Join(dir, "node.png")
	txtPath := filepath.Join(dir, "node.txt")
	junkPath := filepath.Join(dir, "junk.bin")
	for path, data := range map[string][]byte{
		pngPath:  png,
		txtPath:  []byte(url + "\n"),
		junkPath: {0x00, 0x01, 0x02},
	} {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, path := range []string{jsonPath, pngPath, txtPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			cfg, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile failed: %v", err)
			}
			if cfg.Remarks != "A" || cfg.Client.ServerHost != "example.com" {
				t.Errorf("Unexpected node %+v", cfg)
			}
		})
	}

	t.Run("Unrecognised file", func(t *testing.T) {
		if _, err := ImportFile(junkPath); err == nil {
			t.Error("Expected an error")
		}
	})

	t.Run("ImportFiles collects failures", func(t *testing.T) {
		nodes, errs := ImportFiles([]string{jsonPath, junkPath, "", filepath.Join(dir, "missing.json"), txtPath})
		if len(nodes) != 2 {
			t.Errorf("Expected 2 nodes, got %d", len(nodes))
		}
		if len(errs) != 2 {
			t.Errorf("Expected 2 errors, got %d: %v", len(errs), errs)
		}
	})
}

// TestImportFromScreen tests turning scanned codes into nodes
func TestImportFromScreen(t *testing.T) {
	url := exampleURL(t)

	t.Run("Nodes found", func(t *testing.T) {
		nodes, err := ImportFromScreen(func() ([]string, error) {
			return []string{"https://not-a-node.example", url}, nil
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(nodes) != 1 {
			t.Errorf("Expected 1 node, got %d", len(nodes))
		}
	})

	t.Run("No codes", func(t *testing.T) {
		_, err := ImportFromScreen(func() ([]string, error) { return nil, nil })
		if !errors.Is(err, qrcode.ErrNoCode) {
			t.Errorf("Expected ErrNoCode, got %v", err)
		}
	})

	t.Run("Capture failure", func(t *testing.T) {
		failure := errors.New("no display")
		_, err := ImportFromScreen(func() ([]string, error) { return nil, failure })
		if !errors.Is(err, failure) {
			t.Errorf("Expected capture failure, got %v", err)
		}
	})
}
